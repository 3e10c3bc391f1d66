package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/platform/postgres"
	"github.com/snapsolve/snapsolve/internal/platform/redis"
	"github.com/snapsolve/snapsolve/internal/platform/sqlite"
	"github.com/snapsolve/snapsolve/internal/store"
)

// Storage drivers accepted in storage.driver.
const (
	driverMemory   = "memory"
	driverFile     = "file"
	driverSQLite   = "sqlite"
	driverPostgres = "postgres"
	driverRedis    = "redis"
)

// sqliteFileName is used when storage.path names a directory for sqlite.
const sqliteFileName = "snapsolve.db"

// openAdapter opens the persistence adapter selected by cfg.Driver.
func openAdapter(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.Adapter, error) {
	switch cfg.Driver {
	case driverMemory:
		logger.Warn("using in-memory storage; progress is lost on restart")
		return store.NewMemory(), nil

	case driverFile:
		return store.NewFile(cfg.Path)

	case driverSQLite:
		path := cfg.Path
		if path != sqlite.MemoryPath && filepath.Ext(path) == "" {
			path = filepath.Join(path, sqliteFileName)
		}
		return sqlite.Open(ctx, path, logger)

	case driverPostgres:
		if cfg.URL == "" {
			return nil, fmt.Errorf("storage.url is required for the %s driver", driverPostgres)
		}
		return postgres.Open(ctx, cfg.URL, cfg.KeyPrefix, logger)

	case driverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("storage.redis_addr is required for the %s driver", driverRedis)
		}
		return redis.Open(ctx, redis.Config{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		}, logger)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
