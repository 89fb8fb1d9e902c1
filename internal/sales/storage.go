package sales

import (
	"context"
	"sort"
)

// Storage is the main interface for our sales storage layer.
// Every backend decodes through Decode/DecodeAs so variants resolve the same way.
type Storage interface {
	// Create fails with ErrDuplicateKey if the dni is already stored.
	Create(ctx context.Context, sale Sale) error
	Read(ctx context.Context, dni int) (Sale, error)
	// Update overwrites one field in place; derived fields are not recomputed.
	Update(ctx context.Context, dni int, patch Patch) error
	Delete(ctx context.Context, dni int) error
	// List returns base summaries ordered by dni.
	List(ctx context.Context) ([]Summary, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	m map[int]Record
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[int]Record{},
	}
}

func (l *LocalStorage) Create(_ context.Context, sale Sale) error {
	if _, ok := l.m[sale.DNI]; ok {
		return Duplicate(sale.DNI)
	}
	l.m[sale.DNI] = Encode(sale)
	return nil
}

// Read retrieves a sale from the local storage by dni.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(_ context.Context, dni int) (Sale, error) {
	rec, ok := l.m[dni]
	if !ok {
		return Sale{}, NotFound(dni)
	}
	return Decode(rec)
}

func (l *LocalStorage) Update(_ context.Context, dni int, patch Patch) error {
	rec, ok := l.m[dni]
	if !ok {
		return NotFound(dni)
	}
	updated := rec.Clone()
	if err := patch.Apply(updated); err != nil {
		return err
	}
	l.m[dni] = updated
	return nil
}

func (l *LocalStorage) Delete(_ context.Context, dni int) error {
	if _, ok := l.m[dni]; !ok {
		return NotFound(dni)
	}
	delete(l.m, dni)
	return nil
}

func (l *LocalStorage) List(_ context.Context) ([]Summary, error) {
	records := make([]Record, 0, len(l.m))
	for _, rec := range l.m {
		records = append(records, rec)
	}
	return Summaries(records)
}

// Summaries converts records to summaries sorted by dni.
func Summaries(records []Record) ([]Summary, error) {
	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		s, err := SummaryFromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DNI < out[j].DNI })
	return out, nil
}
