// Package redis provides a Redis implementation of store.Adapter.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/snapsolve/snapsolve/internal/store"
)

// Config holds the connection settings for the Redis adapter.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Adapter implements store.Adapter on a Redis server. Blobs are stored as
// plain string values without expiry.
type Adapter struct {
	client    goredis.UniversalClient
	keyPrefix string
	logger    *slog.Logger
}

var _ store.Adapter = (*Adapter)(nil)

// Open connects to Redis and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Adapter, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("redis state adapter ready", "addr", cfg.Addr, "db", cfg.DB)
	return New(client, cfg.KeyPrefix, logger), nil
}

// New wraps an existing client.
func New(client goredis.UniversalClient, keyPrefix string, logger *slog.Logger) *Adapter {
	return &Adapter{
		client:    client,
		keyPrefix: keyPrefix,
		logger:    logger.With("component", "redis_adapter"),
	}
}

// Get implements store.Adapter.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	value, err := a.client.Get(ctx, a.keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.NewStoreError(key, "get", "redis GET failed", err)
	}
	return value, nil
}

// Set implements store.Adapter.
func (a *Adapter) Set(ctx context.Context, key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	if err := a.client.Set(ctx, a.keyPrefix+key, value, 0).Err(); err != nil {
		a.logger.Error("failed to store state blob", "key", key, "error", err)
		return store.NewStoreError(key, "set", "redis SET failed", err)
	}
	return nil
}

// Close implements store.Adapter.
func (a *Adapter) Close() error {
	return a.client.Close()
}
