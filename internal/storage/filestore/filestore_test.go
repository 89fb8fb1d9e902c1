package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone_sales/internal/sales"
	"phone_sales/internal/storage/filestore"
	"phone_sales/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *filestore.Store {
	t.Helper()
	return filestore.New(filepath.Join(t.TempDir(), "ventas_db.json"))
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) sales.Storage {
		return newTestStore(t)
	})
}

func TestStore_FileLayout(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Create(ctx, storagetest.MustSale(t, sales.ChannelOnline, "12345678", "2024-01-01", "Perez Juan", "2")))
	require.NoError(t, s.Create(ctx, storagetest.MustSale(t, sales.ChannelLocal, "1234567", "2024-01-02", "Gomez Ana", "3")))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"12345678": {"dni": 12345678, "fecha": "2024-01-01", "cliente": "Perez Juan", "producto_vendido": 2, "envio_gratis": true},
		"1234567":  {"dni": 1234567, "fecha": "2024-01-02", "cliente": "Gomez Ana", "producto_vendido": 3, "descuento_efectivo": 0.3}
	}`, string(raw))
	assert.Contains(t, string(raw), "\n    \"1234567\"", "file is indented with four spaces")
}

func TestStore_ReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ventas_db.json")
	legacy := `{
    "30111222": {"dni": 30111222, "fecha": "2024-01-01", "cliente": "Perez Juan", "producto_vendido": 4, "descuento": true},
    "30111333": {"dni": 30111333, "fecha": "2024-01-03", "cliente": "Lopez Maria", "producto_vendido": 1, "envio_gratis": false}
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))
	s := filestore.New(path)
	ctx := context.Background()

	local, err := s.Read(ctx, 30111222)
	require.NoError(t, err)
	assert.Equal(t, sales.ChannelLocal, local.Channel)
	assert.Equal(t, "0.40", local.CashDiscount.StringFixed(2))

	online, err := s.Read(ctx, 30111333)
	require.NoError(t, err)
	assert.Equal(t, sales.ChannelOnline, online.Channel)
	assert.False(t, online.FreeShipping)
}

func TestStore_UnknownVariantRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ventas_db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1234567": {"dni": 1234567, "fecha": "2024-01-01", "cliente": "X", "producto_vendido": 1}}`), 0o644))

	_, err := filestore.New(path).Read(context.Background(), 1234567)
	assert.ErrorIs(t, err, sales.ErrUnknownVariant)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ventas_db.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))
	s := filestore.New(path)

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, sales.ErrStorage)

	err = s.Create(context.Background(), storagetest.MustSale(t, sales.ChannelOnline, "1234567", "2024-01-01", "X", "1"))
	assert.ErrorIs(t, err, sales.ErrStorage)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(raw), "a failed load must not overwrite the file")
}

func TestStore_UnwritableDirectory(t *testing.T) {
	s := filestore.New(filepath.Join(t.TempDir(), "missing", "ventas_db.json"))

	err := s.Create(context.Background(), storagetest.MustSale(t, sales.ChannelOnline, "1234567", "2024-01-01", "X", "1"))
	assert.ErrorIs(t, err, sales.ErrStorage)

	var serr *sales.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "write", serr.Op)
}
