package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSale_RejectsBadDNI(t *testing.T) {
	for _, dni := range []string{"", "abc", "123456", "123456789", "1234-567", "-1234567", "+1234567", "12.34567", "0000000"} {
		_, err := NewOnlineSale(dni, "2024-01-01", "Perez Juan", "1")
		assert.ErrorIs(t, err, ErrValidation, "dni %q", dni)

		var verr *ValidationError
		if assert.ErrorAs(t, err, &verr, "dni %q", dni) {
			assert.Equal(t, "dni", verr.Field)
		}
	}
}

func TestNewSale_AcceptsSevenAndEightDigits(t *testing.T) {
	s, err := NewLocalSale("1234567", "2024-01-01", "Perez Juan", "1")
	require.NoError(t, err)
	assert.Equal(t, 1234567, s.DNI)

	s, err = NewLocalSale(" 12345678 ", "2024-01-01", "Perez Juan", "1")
	require.NoError(t, err)
	assert.Equal(t, 12345678, s.DNI)
}

func TestNewSale_RejectsBadDate(t *testing.T) {
	for _, date := range []string{"", "01-01-2024", "2024/01/01", "2024-13-01", "2024-02-30", "ayer"} {
		_, err := NewOnlineSale("12345678", date, "Perez Juan", "1")
		assert.ErrorIs(t, err, ErrValidation, "date %q", date)
	}
}

func TestNewSale_RejectsBadQuantity(t *testing.T) {
	for _, q := range []string{"", "dos", "1.5", "0", "-3"} {
		_, err := NewOnlineSale("12345678", "2024-01-01", "Perez Juan", q)
		assert.ErrorIs(t, err, ErrValidation, "quantity %q", q)
	}
}

func TestNewSale_UnknownChannel(t *testing.T) {
	_, err := NewSale("mayorista", "12345678", "2024-01-01", "Perez Juan", "1")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestNewSale_DerivedFields(t *testing.T) {
	online, err := NewOnlineSale("12345678", "2024-01-01", "Perez Juan", "3")
	require.NoError(t, err)
	assert.True(t, online.FreeShipping)
	assert.True(t, online.CashDiscount.IsZero())

	local, err := NewLocalSale("12345678", "2024-01-01", "Perez Juan", "3")
	require.NoError(t, err)
	assert.False(t, local.FreeShipping)
	assert.True(t, decimal.RequireFromString("0.3").Equal(local.CashDiscount), "got %s", local.CashDiscount)
}

func TestFreeShipping(t *testing.T) {
	assert.False(t, FreeShipping(1))
	assert.True(t, FreeShipping(2))
	assert.True(t, FreeShipping(10))
}

func TestCashDiscount(t *testing.T) {
	tests := map[int]string{
		1:  "0",
		2:  "0",
		3:  "0.3",
		7:  "0.7",
		15: "1.5",
	}
	for q, want := range tests {
		got := CashDiscount(q)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "quantity %d: want %s, got %s", q, want, got)
	}
}

func TestSale_String(t *testing.T) {
	online, err := NewOnlineSale("12345678", "2024-01-01", "Perez Juan", "1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 Perez Juan - Envío gratis: false", online.String())

	local, err := NewLocalSale("12345678", "2024-01-01", "Perez Juan", "4")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 Perez Juan - Descuento: 0.40", local.String())
}

func TestSummary_String(t *testing.T) {
	s, err := NewLocalSale("12345678", "2024-01-01", "Perez Juan", "4")
	require.NoError(t, err)
	assert.Equal(t, "DNI: 12345678, Cliente: Perez Juan, Fecha: 2024-01-01, Productos: 4", s.Summary().String())
}

func TestParseChannel(t *testing.T) {
	ch, err := ParseChannel(" Online ")
	require.NoError(t, err)
	assert.Equal(t, ChannelOnline, ch)

	_, err = ParseChannel("phone")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
