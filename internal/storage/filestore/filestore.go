// Package filestore keeps every sale in a single JSON object on disk.
//
// The file maps the stringified dni to the flat record. Every mutation reads
// the whole file, changes the map and writes it back; there is no locking, so
// the last writer wins. A missing file is an empty store.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strconv"

	"phone_sales/internal/sales"
)

const backendName = "file"

// Store is a sales.Storage backed by one JSON file.
type Store struct {
	path string
}

// New returns a store for path. The file is created on the first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.path
}

// Close is a no-op; the file is opened and closed per operation.
func (s *Store) Close() error {
	return nil
}

func (s *Store) Create(_ context.Context, sale sales.Sale) error {
	data, err := s.load()
	if err != nil {
		return err
	}

	key := strconv.Itoa(sale.DNI)
	if _, ok := data[key]; ok {
		return sales.Duplicate(sale.DNI)
	}
	data[key] = sales.Encode(sale)
	return s.save(data)
}

func (s *Store) Read(_ context.Context, dni int) (sales.Sale, error) {
	data, err := s.load()
	if err != nil {
		return sales.Sale{}, err
	}

	rec, ok := data[strconv.Itoa(dni)]
	if !ok {
		return sales.Sale{}, sales.NotFound(dni)
	}
	return sales.Decode(rec)
}

func (s *Store) Update(_ context.Context, dni int, patch sales.Patch) error {
	data, err := s.load()
	if err != nil {
		return err
	}

	key := strconv.Itoa(dni)
	rec, ok := data[key]
	if !ok {
		return sales.NotFound(dni)
	}
	if err := patch.Apply(rec); err != nil {
		return err
	}
	return s.save(data)
}

func (s *Store) Delete(_ context.Context, dni int) error {
	data, err := s.load()
	if err != nil {
		return err
	}

	key := strconv.Itoa(dni)
	if _, ok := data[key]; !ok {
		return sales.NotFound(dni)
	}
	delete(data, key)
	return s.save(data)
}

func (s *Store) List(_ context.Context) ([]sales.Summary, error) {
	data, err := s.load()
	if err != nil {
		return nil, err
	}

	records := make([]sales.Record, 0, len(data))
	for _, rec := range data {
		records = append(records, rec)
	}
	return sales.Summaries(records)
}

func (s *Store) load() (map[string]sales.Record, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]sales.Record{}, nil
	}
	if err != nil {
		return nil, sales.NewStorageError(backendName, "read", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]sales.Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	data := map[string]sales.Record{}
	if err := dec.Decode(&data); err != nil {
		return nil, sales.NewStorageError(backendName, "decode", err)
	}
	return data, nil
}

func (s *Store) save(data map[string]sales.Record) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return sales.NewStorageError(backendName, "encode", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return sales.NewStorageError(backendName, "write", err)
	}
	return nil
}
