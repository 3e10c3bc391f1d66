package postgres_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/snapsolve/snapsolve/internal/ciutil"
	"github.com/snapsolve/snapsolve/internal/platform/postgres"
	"github.com/snapsolve/snapsolve/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestAdapter connects to the integration database under a unique key
// prefix.
func openTestAdapter(t *testing.T) *postgres.Adapter {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	url := ciutil.TestDatabaseURL(logger)
	ciutil.RequireService(t, "postgres", url)

	prefix := fmt.Sprintf("test-%d:", time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adapter, err := postgres.Open(ctx, url, prefix, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestAdapterRoundTrip(t *testing.T) {
	adapter := openTestAdapter(t)
	ctx := context.Background()

	_, err := adapter.Get(ctx, store.UserStoreKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, adapter.Set(ctx, store.UserStoreKey, []byte(`{"version":1,"state":{"xp":10}}`)))
	got, err := adapter.Get(ctx, store.UserStoreKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"state":{"xp":10}}`, string(got))

	require.NoError(t, adapter.Set(ctx, store.UserStoreKey, []byte(`{"version":1,"state":{"xp":20}}`)))
	got, err = adapter.Get(ctx, store.UserStoreKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"state":{"xp":20}}`, string(got))
}

func TestAdapterRejectsInvalidInput(t *testing.T) {
	adapter := openTestAdapter(t)
	ctx := context.Background()

	assert.ErrorIs(t, adapter.Set(ctx, "bad key", []byte(`{}`)), store.ErrInvalidKey)
	assert.ErrorIs(t, adapter.Set(ctx, store.QuizStoreKey, []byte(`not json`)), store.ErrInvalidBlob)
}
