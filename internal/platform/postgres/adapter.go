package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/snapsolve/snapsolve/internal/store"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Adapter implements store.Adapter on a PostgreSQL database.
type Adapter struct {
	db        *sql.DB
	keyPrefix string
	logger    *slog.Logger
}

var _ store.Adapter = (*Adapter)(nil)

// Open connects to url, verifies the connection, applies pending migrations
// and returns an Adapter. keyPrefix is prepended to every key.
func Open(ctx context.Context, url, keyPrefix string, logger *slog.Logger) (*Adapter, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("postgres state adapter ready")
	return New(db, keyPrefix, logger), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, keyPrefix string, logger *slog.Logger) *Adapter {
	return &Adapter{
		db:        db,
		keyPrefix: keyPrefix,
		logger:    logger.With("component", "postgres_adapter"),
	}
}

// Migrate applies the embedded migrations to db.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	migrations, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied",
			"source", r.Source.Path,
			"version", r.Source.Version,
			"duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

// Get implements store.Adapter.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := a.db.QueryRowContext(ctx,
		`SELECT value FROM state_blobs WHERE key = $1`,
		a.keyPrefix+key,
	).Scan(&value)
	if err != nil {
		err = MapError(err)
		if store.IsNotFoundError(err) {
			return nil, store.ErrNotFound
		}
		return nil, store.NewStoreError(key, "get", "query failed", err)
	}
	return value, nil
}

// Set implements store.Adapter.
func (a *Adapter) Set(ctx context.Context, key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO state_blobs (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		a.keyPrefix+key, string(value),
	)
	if err != nil {
		a.logger.Error("failed to upsert state blob", "key", key, "error", err)
		return store.NewStoreError(key, "set", "upsert failed", MapError(err))
	}
	return nil
}

// Close implements store.Adapter.
func (a *Adapter) Close() error {
	return a.db.Close()
}
