package sales

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Service provides high-level sales management operations on a Storage backend.
// It takes raw strings from the menu or the HTTP API and validates them before
// touching storage.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// CreateSale handles the creation of a new sale.
func (s *Service) CreateSale(ctx context.Context, channel Channel, dni, date, customer, quantity string) (Sale, error) {
	sale, err := NewSale(channel, dni, date, customer, quantity)
	if err != nil {
		s.logger.Warn("rejected sale input", zap.String("dni", dni), zap.String("channel", string(channel)), zap.Error(err))
		return Sale{}, err
	}

	if err := s.storage.Create(ctx, sale); err != nil {
		s.logError("failed to save sale", sale.DNI, err)
		return Sale{}, fmt.Errorf("failed to save sale: %w", err)
	}

	s.logger.Info("sale created",
		zap.Int("dni", sale.DNI),
		zap.String("channel", string(sale.Channel)),
		zap.Int("quantity", sale.Quantity),
	)
	return sale, nil
}

// FindSale looks a sale up by the customer's dni.
func (s *Service) FindSale(ctx context.Context, dni string) (Sale, error) {
	id, err := ParseDNI(dni)
	if err != nil {
		return Sale{}, err
	}

	sale, err := s.storage.Read(ctx, id)
	if err != nil {
		s.logError("failed to read sale", id, err)
		return Sale{}, err
	}
	return sale, nil
}

// UpdateSale overwrites a single field. Changing the quantity leaves the
// stored derived field untouched.
func (s *Service) UpdateSale(ctx context.Context, dni, field, value string) error {
	id, err := ParseDNI(dni)
	if err != nil {
		return err
	}

	patch, err := NewPatch(field, value)
	if err != nil {
		s.logger.Warn("rejected update", zap.Int("dni", id), zap.String("field", field), zap.Error(err))
		return err
	}

	if err := s.storage.Update(ctx, id, patch); err != nil {
		s.logError("failed to update sale", id, err)
		return err
	}

	s.logger.Info("sale updated", zap.Int("dni", id), zap.String("field", string(patch.Field)), zap.Any("value", patch.Value))
	return nil
}

// DeleteSale removes the sale and any channel record stored with it.
func (s *Service) DeleteSale(ctx context.Context, dni string) error {
	id, err := ParseDNI(dni)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, id); err != nil {
		s.logError("failed to delete sale", id, err)
		return err
	}

	s.logger.Info("sale deleted", zap.Int("dni", id))
	return nil
}

// ListSales returns every stored sale without derived fields.
func (s *Service) ListSales(ctx context.Context) ([]Summary, error) {
	all, err := s.storage.List(ctx)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}
	s.logger.Debug("sales listed", zap.Int("results_count", len(all)))
	return all, nil
}

// logError logs storage failures at error level and expected outcomes
// (not found, duplicates, wrong field) at warn.
func (s *Service) logError(msg string, dni int, err error) {
	if IsDomainError(err) && !errors.Is(err, ErrStorage) {
		s.logger.Warn(msg, zap.Int("dni", dni), zap.Error(err))
		return
	}
	s.logger.Error(msg, zap.Int("dni", dni), zap.Error(err))
}
