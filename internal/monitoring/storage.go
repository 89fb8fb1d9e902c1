package monitoring

import (
	"context"

	"phone_sales/internal/sales"
)

// InstrumentedStorage times and counts every call to the wrapped backend.
type InstrumentedStorage struct {
	next    sales.Storage
	backend string
}

// InstrumentStorage wraps next; backend is used as the metric label.
func InstrumentStorage(backend string, next sales.Storage) *InstrumentedStorage {
	return &InstrumentedStorage{next: next, backend: backend}
}

func (s *InstrumentedStorage) Create(ctx context.Context, sale sales.Sale) error {
	end := TimeStorageOperation(s.backend, "create")
	defer end()

	err := s.next.Create(ctx, sale)
	RecordStorageResult(s.backend, "create", err)
	if err == nil {
		RecordSaleCreated(sale)
	}
	return err
}

func (s *InstrumentedStorage) Read(ctx context.Context, dni int) (sales.Sale, error) {
	end := TimeStorageOperation(s.backend, "read")
	defer end()

	sale, err := s.next.Read(ctx, dni)
	RecordStorageResult(s.backend, "read", err)
	return sale, err
}

func (s *InstrumentedStorage) Update(ctx context.Context, dni int, patch sales.Patch) error {
	end := TimeStorageOperation(s.backend, "update")
	defer end()

	err := s.next.Update(ctx, dni, patch)
	RecordStorageResult(s.backend, "update", err)
	return err
}

func (s *InstrumentedStorage) Delete(ctx context.Context, dni int) error {
	end := TimeStorageOperation(s.backend, "delete")
	defer end()

	err := s.next.Delete(ctx, dni)
	RecordStorageResult(s.backend, "delete", err)
	return err
}

func (s *InstrumentedStorage) List(ctx context.Context) ([]sales.Summary, error) {
	end := TimeStorageOperation(s.backend, "list")
	defer end()

	all, err := s.next.List(ctx)
	RecordStorageResult(s.backend, "list", err)
	return all, err
}
