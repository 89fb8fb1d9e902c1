// Package boltstore provides a BoltDB-backed sales store.
//
// BoltDB is an embedded key/value store: all sales live in a single file and
// no external database process is required. Each sale is stored under its dni
// in the "ventas" bucket as the same flat JSON record the file backend writes.
package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"

	bolt "github.com/boltdb/bolt"

	"phone_sales/internal/sales"
)

const (
	bucketName  = "ventas"
	backendName = "bolt"
)

// Store wraps a BoltDB database and exposes the sales.Storage operations.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) a BoltDB database at the given path and ensures the
// ventas bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, sales.NewStorageError(backendName, "open", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, sales.NewStorageError(backendName, "open", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(dni int) []byte {
	return []byte(strconv.Itoa(dni))
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

// Create persists a new sale only if its dni is not stored yet.
func (s *Store) Create(_ context.Context, sale sales.Sale) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b.Get(key(sale.DNI)) != nil {
			return sales.Duplicate(sale.DNI)
		}

		data, err := json.Marshal(sales.Encode(sale))
		if err != nil {
			return err
		}
		return b.Put(key(sale.DNI), data)
	})
	return sales.NewStorageError(backendName, "create", err)
}

func (s *Store) Read(_ context.Context, dni int) (sales.Sale, error) {
	var rec sales.Record

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketName)).Get(key(dni))
		if v == nil {
			return sales.NotFound(dni)
		}
		var err error
		rec, err = decodeRecord(v)
		return err
	})
	if err != nil {
		return sales.Sale{}, sales.NewStorageError(backendName, "read", err)
	}

	return sales.Decode(rec)
}

func (s *Store) Update(_ context.Context, dni int, patch sales.Patch) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		v := b.Get(key(dni))
		if v == nil {
			return sales.NotFound(dni)
		}
		rec, err := decodeRecord(v)
		if err != nil {
			return err
		}
		if err := patch.Apply(rec); err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(key(dni), data)
	})
	return sales.NewStorageError(backendName, "update", err)
}

func (s *Store) Delete(_ context.Context, dni int) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b.Get(key(dni)) == nil {
			return sales.NotFound(dni)
		}
		return b.Delete(key(dni))
	})
	return sales.NewStorageError(backendName, "delete", err)
}

// List returns all sales stored in the bucket.
func (s *Store) List(_ context.Context) ([]sales.Summary, error) {
	var records []sales.Record

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, sales.NewStorageError(backendName, "list", err)
	}

	return sales.Summaries(records)
}
