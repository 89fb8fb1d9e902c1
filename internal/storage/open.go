// Package storage picks and opens the configured sales backend.
package storage

import (
	"fmt"

	"go.uber.org/zap"

	"phone_sales/internal/config"
	"phone_sales/internal/sales"
	"phone_sales/internal/storage/boltstore"
	"phone_sales/internal/storage/filestore"
	"phone_sales/internal/storage/redisstore"
	"phone_sales/internal/storage/sqlstore"
)

// Backend is a sales.Storage holding resources that must be released.
type Backend interface {
	sales.Storage
	Close() error
}

// Open returns the backend named by cfg.Backend.
func Open(cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Backend {
	case "file":
		logger.Info("using file storage", zap.String("path", cfg.File.Path))
		return filestore.New(cfg.File.Path), nil

	case "sql":
		logger.Info("using sql storage", zap.String("driver", cfg.Database.Driver))
		s, err := sqlstore.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		return s, nil

	case "bolt":
		logger.Info("using bolt storage", zap.String("path", cfg.Bolt.Path))
		s, err := boltstore.Open(cfg.Bolt.Path)
		if err != nil {
			return nil, err
		}
		return s, nil

	case "redis":
		logger.Info("using redis storage", zap.String("addr", cfg.Redis.Addr()), zap.String("key", cfg.Redis.Key))
		s, err := redisstore.Open(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
