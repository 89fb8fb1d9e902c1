// Package storagetest holds the behaviour every sales.Storage backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone_sales/internal/sales"
)

// Factory returns an empty backend. Cleanup is registered on t.
type Factory func(t *testing.T) sales.Storage

// MustSale builds a sale or fails the test.
func MustSale(t *testing.T, ch sales.Channel, dni, date, customer, quantity string) sales.Sale {
	t.Helper()
	s, err := sales.NewSale(ch, dni, date, customer, quantity)
	require.NoError(t, err)
	return s
}

// Run exercises the full storage contract against the backend built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("CreateThenRead_Online", func(t *testing.T) {
		st := newStore(t)
		want := MustSale(t, sales.ChannelOnline, "12345678", "2024-01-01", "Perez Juan", "3")

		require.NoError(t, st.Create(ctx, want))

		got, err := st.Read(ctx, 12345678)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "want %+v, got %+v", want, got)
		assert.Equal(t, sales.ChannelOnline, got.Channel)
		assert.True(t, got.FreeShipping)
	})

	t.Run("CreateThenRead_Local", func(t *testing.T) {
		st := newStore(t)
		want := MustSale(t, sales.ChannelLocal, "1234567", "2023-12-31", "Gomez Ana", "3")

		require.NoError(t, st.Create(ctx, want))

		got, err := st.Read(ctx, 1234567)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "want %+v, got %+v", want, got)
		assert.Equal(t, sales.ChannelLocal, got.Channel)
		assert.True(t, decimal.RequireFromString("0.3").Equal(got.CashDiscount))
		assert.Equal(t, "2023-12-31", got.Date.Format(sales.DateLayout))
	})

	t.Run("CreateDuplicate_LeavesStoreUnchanged", func(t *testing.T) {
		st := newStore(t)
		first := MustSale(t, sales.ChannelOnline, "12345678", "2024-01-01", "Perez Juan", "1")
		second := MustSale(t, sales.ChannelLocal, "12345678", "2024-02-02", "Otro Cliente", "5")

		require.NoError(t, st.Create(ctx, first))
		err := st.Create(ctx, second)
		assert.ErrorIs(t, err, sales.ErrDuplicateKey)

		got, err := st.Read(ctx, 12345678)
		require.NoError(t, err)
		assert.True(t, first.Equal(got), "store changed after duplicate create: %+v", got)
	})

	t.Run("ReadMissing", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Read(ctx, 7654321)
		assert.ErrorIs(t, err, sales.ErrNotFound)
	})

	t.Run("DeleteThenRead", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Create(ctx, MustSale(t, sales.ChannelLocal, "1234567", "2024-01-01", "Perez Juan", "2")))

		require.NoError(t, st.Delete(ctx, 1234567))

		_, err := st.Read(ctx, 1234567)
		assert.ErrorIs(t, err, sales.ErrNotFound)

		err = st.Delete(ctx, 1234567)
		assert.ErrorIs(t, err, sales.ErrNotFound)
	})

	t.Run("UpdateQuantity_DoesNotCascade", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Create(ctx, MustSale(t, sales.ChannelLocal, "12345678", "2024-01-01", "Perez Juan", "3")))

		patch, err := sales.NewPatch("producto_vendido", "1")
		require.NoError(t, err)
		require.NoError(t, st.Update(ctx, 12345678, patch))

		got, err := st.Read(ctx, 12345678)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Quantity)
		// sigue con el descuento calculado para 3 unidades
		assert.True(t, decimal.RequireFromString("0.30").Equal(got.CashDiscount), "discount %s", got.CashDiscount)
	})

	t.Run("UpdateBaseFields", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Create(ctx, MustSale(t, sales.ChannelOnline, "12345678", "2024-01-01", "Perez Juan", "1")))

		for _, tc := range []struct{ field, value string }{
			{"date", "2024-03-15"},
			{"customer_name", "Perez Juan Carlos"},
			{"free_shipping", "true"},
		} {
			patch, err := sales.NewPatch(tc.field, tc.value)
			require.NoError(t, err)
			require.NoError(t, st.Update(ctx, 12345678, patch), tc.field)
		}

		got, err := st.Read(ctx, 12345678)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-15", got.Date.Format(sales.DateLayout))
		assert.Equal(t, "Perez Juan Carlos", got.Customer)
		assert.True(t, got.FreeShipping)
		assert.Equal(t, 1, got.Quantity)
	})

	t.Run("UpdateDiscountOnLocal", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Create(ctx, MustSale(t, sales.ChannelLocal, "1234567", "2024-01-01", "Perez Juan", "1")))

		patch, err := sales.NewPatch("discount", "1.25")
		require.NoError(t, err)
		require.NoError(t, st.Update(ctx, 1234567, patch))

		got, err := st.Read(ctx, 1234567)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1.25").Equal(got.CashDiscount), "discount %s", got.CashDiscount)
	})

	t.Run("UpdateOtherChannelField", func(t *testing.T) {
		st := newStore(t)
		require.NoError(t, st.Create(ctx, MustSale(t, sales.ChannelOnline, "12345678", "2024-01-01", "Perez Juan", "3")))

		patch, err := sales.NewPatch("discount", "0.5")
		require.NoError(t, err)
		err = st.Update(ctx, 12345678, patch)
		assert.ErrorIs(t, err, sales.ErrUnknownField)

		got, err := st.Read(ctx, 12345678)
		require.NoError(t, err)
		assert.Equal(t, sales.ChannelOnline, got.Channel)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		st := newStore(t)
		patch, err := sales.NewPatch("quantity", "4")
		require.NoError(t, err)
		assert.ErrorIs(t, st.Update(ctx, 12345678, patch), sales.ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		st := newStore(t)

		empty, err := st.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, empty)

		require.NoError(t, st.Create(ctx, MustSale(t, sales.ChannelOnline, "22222222", "2024-01-02", "Lopez Maria", "2")))
		require.NoError(t, st.Create(ctx, MustSale(t, sales.ChannelLocal, "1111111", "2024-01-01", "Perez Juan", "4")))

		got, err := st.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []sales.Summary{
			{DNI: 1111111, Customer: "Perez Juan", Date: "2024-01-01", Quantity: 4},
			{DNI: 22222222, Customer: "Lopez Maria", Date: "2024-01-02", Quantity: 2},
		}, got)
	})
}
