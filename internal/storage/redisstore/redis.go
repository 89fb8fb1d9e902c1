// Package redisstore keeps sales in a single Redis hash: field = dni, value = JSON record.
package redisstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"

	"phone_sales/internal/config"
	"phone_sales/internal/sales"
)

const backendName = "redis"

type Store struct {
	client *redis.Client
	key    string
}

// Open connects to Redis and pings it once.
func Open(cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, sales.NewStorageError(backendName, "ping", err)
	}

	return New(client, cfg.Key), nil
}

// New uses an existing client. An empty key defaults to "ventas".
func New(client *redis.Client, key string) *Store {
	if key == "" {
		key = "ventas"
	}
	return &Store{client: client, key: key}
}

func (s *Store) Close() error {
	return s.client.Close()
}

func field(dni int) string {
	return strconv.Itoa(dni)
}

func decodeRecord(v []byte) (sales.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var rec sales.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) get(ctx context.Context, dni int) (sales.Record, error) {
	v, err := s.client.HGet(ctx, s.key, field(dni)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sales.NotFound(dni)
		}
		return nil, err
	}
	return decodeRecord(v)
}

func (s *Store) Create(ctx context.Context, sale sales.Sale) error {
	data, err := json.Marshal(sales.Encode(sale))
	if err != nil {
		return sales.NewStorageError(backendName, "create", err)
	}

	ok, err := s.client.HSetNX(ctx, s.key, field(sale.DNI), data).Result()
	if err != nil {
		return sales.NewStorageError(backendName, "create", err)
	}
	if !ok {
		return sales.Duplicate(sale.DNI)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, dni int) (sales.Sale, error) {
	rec, err := s.get(ctx, dni)
	if err != nil {
		return sales.Sale{}, sales.NewStorageError(backendName, "read", err)
	}
	return sales.Decode(rec)
}

// Update is a plain read-modify-write; concurrent writers are not guarded against.
func (s *Store) Update(ctx context.Context, dni int, patch sales.Patch) error {
	rec, err := s.get(ctx, dni)
	if err != nil {
		return sales.NewStorageError(backendName, "update", err)
	}
	if err := patch.Apply(rec); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return sales.NewStorageError(backendName, "update", err)
	}
	if err := s.client.HSet(ctx, s.key, field(dni), data).Err(); err != nil {
		return sales.NewStorageError(backendName, "update", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, dni int) error {
	n, err := s.client.HDel(ctx, s.key, field(dni)).Result()
	if err != nil {
		return sales.NewStorageError(backendName, "delete", err)
	}
	if n == 0 {
		return sales.NotFound(dni)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]sales.Summary, error) {
	vals, err := s.client.HVals(ctx, s.key).Result()
	if err != nil {
		return nil, sales.NewStorageError(backendName, "list", err)
	}

	records := make([]sales.Record, 0, len(vals))
	for _, v := range vals {
		rec, err := decodeRecord([]byte(v))
		if err != nil {
			return nil, sales.NewStorageError(backendName, "list", err)
		}
		records = append(records, rec)
	}
	return sales.Summaries(records)
}
