package boltstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone_sales/internal/sales"
	"phone_sales/internal/storage/boltstore"
	"phone_sales/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *boltstore.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := boltstore.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) sales.Storage {
		return newTestStore(t)
	})
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ventas.bolt")

	s, err := boltstore.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, storagetest.MustSale(t, sales.ChannelLocal, "1234567", "2024-01-01", "Perez Juan", "3")))
	require.NoError(t, s.Close())

	s, err = boltstore.Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Read(ctx, 1234567)
	require.NoError(t, err)
	assert.Equal(t, "0.30", got.CashDiscount.StringFixed(2))
}

func TestOpenWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ventas.bolt")
	s, err := boltstore.Open(path)
	require.NoError(t, err)
	defer s.Close()

	// the file lock is held by s, the second open times out
	_, err = boltstore.Open(path)
	assert.ErrorIs(t, err, sales.ErrStorage)
}
