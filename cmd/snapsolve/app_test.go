package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snapsolve/snapsolve/internal/api/middleware"
	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/service"
	"github.com/snapsolve/snapsolve/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(storage config.StorageConfig) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:                   "127.0.0.1",
			Port:                   0,
			LogLevel:               "debug",
			ShutdownTimeoutSeconds: 1,
		},
		Storage: storage,
		Limits: config.LimitsConfig{
			FreeDailySolves:  5,
			FreeDailyQuizzes: 1,
		},
		Rewards: config.RewardsConfig{SolveXP: 10, QuizXP: 20, SimilarXP: 5},
		LLM: config.LLMConfig{
			ModelName:         "gemini-2.0-flash",
			QuizQuestionCount: 5,
		},
	}
}

func TestOpenAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		adapter, err := openAdapter(ctx, config.StorageConfig{Driver: driverMemory}, testLogger())
		require.NoError(t, err)
		defer func() { _ = adapter.Close() }()
		assert.IsType(t, &store.Memory{}, adapter)
	})

	t.Run("file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "state")
		adapter, err := openAdapter(ctx, config.StorageConfig{Driver: driverFile, Path: dir}, testLogger())
		require.NoError(t, err)
		defer func() { _ = adapter.Close() }()

		require.NoError(t, adapter.Set(ctx, store.UserStoreKey, []byte(`{"version":1}`)))
		_, err = os.Stat(dir)
		assert.NoError(t, err)
	})

	t.Run("sqlite in memory", func(t *testing.T) {
		adapter, err := openAdapter(ctx, config.StorageConfig{Driver: driverSQLite, Path: ":memory:"}, testLogger())
		require.NoError(t, err)
		defer func() { _ = adapter.Close() }()

		require.NoError(t, adapter.Set(ctx, store.QuizStoreKey, []byte(`{}`)))
		got, err := adapter.Get(ctx, store.QuizStoreKey)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(got))
	})

	t.Run("sqlite directory path", func(t *testing.T) {
		dir := t.TempDir()
		adapter, err := openAdapter(ctx, config.StorageConfig{Driver: driverSQLite, Path: dir}, testLogger())
		require.NoError(t, err)
		defer func() { _ = adapter.Close() }()

		_, err = os.Stat(filepath.Join(dir, sqliteFileName))
		assert.NoError(t, err)
	})

	t.Run("postgres requires url", func(t *testing.T) {
		_, err := openAdapter(ctx, config.StorageConfig{Driver: driverPostgres}, testLogger())
		assert.ErrorContains(t, err, "storage.url")
	})

	t.Run("redis requires address", func(t *testing.T) {
		_, err := openAdapter(ctx, config.StorageConfig{Driver: driverRedis}, testLogger())
		assert.ErrorContains(t, err, "storage.redis_addr")
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := openAdapter(ctx, config.StorageConfig{Driver: "etcd"}, testLogger())
		assert.ErrorContains(t, err, `unknown storage driver "etcd"`)
	})
}

func TestNewApplication(t *testing.T) {
	ctx := context.Background()

	t.Run("memory driver without optional integrations", func(t *testing.T) {
		app, err := newApplication(ctx, testConfig(config.StorageConfig{Driver: driverMemory}), testLogger())
		require.NoError(t, err)
		defer app.cleanup(ctx)

		assert.Nil(t, app.publisher)
		assert.Nil(t, app.asyncEvents)
		require.NotNil(t, app.studyService)

		profile := app.studyService.Profile()
		assert.Equal(t, 1, profile.Level)
		assert.NotEmpty(t, profile.UserID)

		_, err = app.studyService.StartQuiz(ctx, "math")
		assert.ErrorIs(t, err, service.ErrGenerationDisabled)

		_, err = app.studyService.UpgradeToPro(ctx, "receipt")
		assert.ErrorIs(t, err, service.ErrUpgradeUnavailable)
	})

	t.Run("invalid time zone", func(t *testing.T) {
		cfg := testConfig(config.StorageConfig{Driver: driverMemory})
		cfg.Clock.Timezone = "Mars/Olympus_Mons"

		_, err := newApplication(ctx, cfg, testLogger())
		assert.ErrorContains(t, err, "failed to initialize clock")
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		_, err := newApplication(ctx, testConfig(config.StorageConfig{Driver: "etcd"}), testLogger())
		assert.ErrorContains(t, err, "failed to open etcd storage")
	})

	t.Run("progress survives a restart on the file driver", func(t *testing.T) {
		storage := config.StorageConfig{Driver: driverFile, Path: t.TempDir()}

		first, err := newApplication(ctx, testConfig(storage), testLogger())
		require.NoError(t, err)
		first.studyService.SetAvatar(ctx, 4)
		userID := first.studyService.Profile().UserID
		first.cleanup(ctx)

		second, err := newApplication(ctx, testConfig(storage), testLogger())
		require.NoError(t, err)
		defer second.cleanup(ctx)

		profile := second.studyService.Profile()
		assert.Equal(t, userID, profile.UserID)
		assert.Equal(t, 4, profile.AvatarID)
	})
}

func TestSetupRouter(t *testing.T) {
	ctx := context.Background()
	app, err := newApplication(ctx, testConfig(config.StorageConfig{Driver: driverMemory}), testLogger())
	require.NoError(t, err)
	defer app.cleanup(ctx)

	router := app.setupRouter()

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get(middleware.TraceIDHeader))
	})

	t.Run("api routes are mounted", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"userId"`)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServeShutsDownOnCancel(t *testing.T) {
	storage := config.StorageConfig{Driver: driverFile, Path: t.TempDir()}
	app, err := newApplication(context.Background(), testConfig(storage), testLogger())
	require.NoError(t, err)

	app.studyService.RecordActivity(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, app.setupRouter()) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	assert.Zero(t, app.flusher.Pending())
	_, err = os.Stat(filepath.Join(storage.Path, store.UserStoreKey+".json"))
	assert.NoError(t, err)
}
