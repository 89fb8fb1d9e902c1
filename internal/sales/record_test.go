package sales

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripJSON pushes a record through encoding/json the way the file backend does.
func roundTripJSON(t *testing.T, rec Record) Record {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out Record
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestEncode_Keys(t *testing.T) {
	online, err := NewOnlineSale("12345678", "2024-01-01", "Perez Juan", "2")
	require.NoError(t, err)
	assert.Equal(t, Record{
		"dni":              12345678,
		"fecha":            "2024-01-01",
		"cliente":          "Perez Juan",
		"producto_vendido": 2,
		"envio_gratis":     true,
	}, Encode(online))

	local, err := NewLocalSale("12345678", "2024-01-01", "Perez Juan", "3")
	require.NoError(t, err)
	rec := local.Record()
	assert.Equal(t, 0.3, rec[KeyCashDiscount])
	assert.NotContains(t, rec, KeyFreeShipping)
}

func TestDecode_RoundTrip(t *testing.T) {
	dates := []string{"2024-01-01", "1999-12-31", "2024-02-29", "2030-07-15"}
	for _, date := range dates {
		for _, q := range []string{"1", "2", "3", "11"} {
			for _, ch := range []Channel{ChannelOnline, ChannelLocal} {
				want, err := NewSale(ch, "1234567", date, "Perez Juan", q)
				require.NoError(t, err)

				got, err := Decode(Encode(want))
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "direct %s %s %s: %+v != %+v", ch, date, q, want, got)

				got, err = Decode(roundTripJSON(t, Encode(want)))
				require.NoError(t, err)
				assert.True(t, want.Equal(got), "json %s %s %s: %+v != %+v", ch, date, q, want, got)
				assert.Equal(t, date, got.Date.Format(DateLayout))
			}
		}
	}
}

func TestDecode_UnknownVariant(t *testing.T) {
	_, err := Decode(Record{
		"dni":              12345678,
		"fecha":            "2024-01-01",
		"cliente":          "Perez Juan",
		"producto_vendido": 2,
	})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestDecode_KeepsStoredDerivedValue(t *testing.T) {
	got, err := Decode(Record{
		"dni":                12345678,
		"fecha":              "2024-01-01",
		"cliente":            "Perez Juan",
		"producto_vendido":   1,
		"descuento_efectivo": 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, ChannelLocal, got.Channel)
	assert.True(t, decimal.RequireFromString("0.3").Equal(got.CashDiscount))
}

func TestDecode_LegacyBooleanDiscount(t *testing.T) {
	got, err := Decode(Record{
		"dni":              json.Number("12345678"),
		"fecha":            "2024-01-01",
		"cliente":          "Perez Juan",
		"producto_vendido": json.Number("5"),
		"descuento":        true,
	})
	require.NoError(t, err)
	assert.Equal(t, ChannelLocal, got.Channel)
	assert.True(t, decimal.RequireFromString("0.5").Equal(got.CashDiscount))
}

func TestDecode_OnlineWinsWhenBothKeysPresent(t *testing.T) {
	got, err := Decode(Record{
		"dni":                12345678,
		"fecha":              "2024-01-01",
		"cliente":            "Perez Juan",
		"producto_vendido":   3,
		"envio_gratis":       false,
		"descuento_efectivo": 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, ChannelOnline, got.Channel)
	assert.False(t, got.FreeShipping)
}

func TestDecodeAs_StripsConflictingKeys(t *testing.T) {
	rec := Record{
		"dni":              12345678,
		"fecha":            "2024-01-01",
		"cliente":          "Perez Juan",
		"producto_vendido": 3,
		"envio_gratis":     false,
	}

	got, err := DecodeAs(rec, ChannelLocal)
	require.NoError(t, err)
	assert.Equal(t, ChannelLocal, got.Channel)
	assert.False(t, got.FreeShipping)
	assert.True(t, decimal.RequireFromString("0.3").Equal(got.CashDiscount))

	// the caller's record is left alone
	assert.Contains(t, rec, KeyFreeShipping)

	got, err = DecodeAs(rec, ChannelOnline)
	require.NoError(t, err)
	assert.True(t, got.FreeShipping, "online derived field is recomputed from quantity")
}

func TestDecodeAs_WithoutDerivedKey(t *testing.T) {
	got, err := DecodeAs(Record{
		"dni":              "1234567",
		"fecha":            "2024-01-01",
		"cliente":          "Perez Juan",
		"producto_vendido": int64(1),
	}, ChannelOnline)
	require.NoError(t, err)
	assert.False(t, got.FreeShipping)
	assert.Equal(t, 1234567, got.DNI)
}

func TestDecode_BadBaseFields(t *testing.T) {
	_, err := Decode(Record{
		"dni":              12345678,
		"fecha":            "01/01/2024",
		"cliente":          "Perez Juan",
		"producto_vendido": 3,
		"envio_gratis":     true,
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = Decode(Record{
		"dni":              12345678,
		"fecha":            "2024-01-01",
		"producto_vendido": 2.5,
		"envio_gratis":     true,
	})
	assert.ErrorIs(t, err, ErrValidation)
}
