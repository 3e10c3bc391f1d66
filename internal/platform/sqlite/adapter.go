package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/snapsolve/snapsolve/internal/store"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Adapter implements store.Adapter on a SQLite database file.
type Adapter struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Adapter = (*Adapter)(nil)

// Open opens (creating if needed) the database at path, applies pending
// migrations and returns an Adapter.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Adapter, error) {
	if path == "" {
		return nil, errors.New("sqlite adapter requires a path")
	}

	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Adapter{db: db, logger: logger.With("component", "sqlite_adapter")}, nil
}

func migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied", "source", r.Source.Path, "version", r.Source.Version)
	}
	return nil
}

// Get implements store.Adapter.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	var value string
	err := a.db.QueryRowContext(ctx, `SELECT value FROM state_blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.NewStoreError(key, "get", "query failed", err)
	}
	return []byte(value), nil
}

// Set implements store.Adapter.
func (a *Adapter) Set(ctx context.Context, key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return store.NewStoreError(key, "set", "value is not valid JSON", store.ErrInvalidBlob)
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO state_blobs (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		a.logger.Error("failed to upsert state blob", "key", key, "error", err)
		return store.NewStoreError(key, "set", "upsert failed", err)
	}
	return nil
}

// Close implements store.Adapter.
func (a *Adapter) Close() error {
	return a.db.Close()
}
