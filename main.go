package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"phone_sales/api"
	"phone_sales/internal/cli"
	"phone_sales/internal/config"
	"phone_sales/internal/monitoring"
	"phone_sales/internal/sales"
	"phone_sales/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("SALES_CONFIG"), os.Getenv)
	if err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}

	logger, err := newLogger(cfg.LevelOrDefault())
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	backend, err := storage.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("backend", cfg.Backend), zap.Error(err))
	}
	defer backend.Close()

	salesService := sales.NewService(monitoring.InstrumentStorage(cfg.Backend, backend), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == "http" {
		r := gin.Default()
		api.InitRoutes(r, salesService, logger)

		logger.Info("starting server", zap.String("addr", cfg.Server.Addr()))
		if err := r.Run(cfg.Server.Addr()); err != nil {
			logger.Fatal("error trying to start server", zap.Error(err))
		}
		return
	}

	menu := cli.NewMenu(salesService, os.Stdin, os.Stdout, describe(cfg), logger)
	menu.Clear = true
	if err := menu.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("menu stopped", zap.Error(err))
	}
}

// newLogger builds a production logger at the given level, written to stderr.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func describe(cfg *config.Config) string {
	switch cfg.Backend {
	case "sql":
		return "la base de datos (" + cfg.Database.Driver + ")"
	case "bolt":
		return "el archivo " + cfg.Bolt.Path
	case "redis":
		return "redis " + cfg.Redis.Addr()
	}
	return "el archivo " + cfg.File.Path
}
