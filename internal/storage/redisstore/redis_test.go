package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phone_sales/internal/config"
	"phone_sales/internal/sales"
	"phone_sales/internal/storage/storagetest"
)

// newTestStore needs a live server; set SALES_TEST_REDIS_ADDR=localhost:6379.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("SALES_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SALES_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())

	key := fmt.Sprintf("ventas_test:%s:%d", t.Name(), time.Now().UnixNano())
	t.Cleanup(func() {
		client.Del(context.Background(), key)
		client.Close()
	})
	return New(client, key)
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) sales.Storage {
		return newTestStore(t)
	})
}

func TestStore_HashLayout(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, storagetest.MustSale(t, sales.ChannelOnline, "12345678", "2024-01-01", "Perez Juan", "2")))

	raw, err := s.client.HGet(ctx, s.key, "12345678").Result()
	require.NoError(t, err)
	assert.JSONEq(t, `{"dni": 12345678, "fecha": "2024-01-01", "cliente": "Perez Juan", "producto_vendido": 2, "envio_gratis": true}`, raw)
}

func TestNew_DefaultKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	assert.Equal(t, "ventas", New(client, "").key)
}

func TestOpen_Unreachable(t *testing.T) {
	_, err := Open(config.RedisConfig{Host: "127.0.0.1", Port: 1})
	assert.ErrorIs(t, err, sales.ErrStorage)
}
