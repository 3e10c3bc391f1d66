package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/snapsolve/snapsolve/internal/clock"
	"github.com/snapsolve/snapsolve/internal/config"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/events"
	"github.com/snapsolve/snapsolve/internal/generation"
	"github.com/snapsolve/snapsolve/internal/platform/amqp"
	"github.com/snapsolve/snapsolve/internal/platform/gemini"
	"github.com/snapsolve/snapsolve/internal/progress"
	"github.com/snapsolve/snapsolve/internal/quiz"
	"github.com/snapsolve/snapsolve/internal/service"
	"github.com/snapsolve/snapsolve/internal/service/entitlement"
	"github.com/snapsolve/snapsolve/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock

	// Persistence
	adapter store.Adapter
	flusher *store.Flusher

	// Stores
	progressStore *progress.Store
	quizStore     *quiz.Store

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	publisher    *amqp.Publisher
	asyncEvents  *events.AsyncHandler

	// Services
	studyService service.StudyService
}

// newApplication creates a new application instance with all dependencies
// initialized and both stores hydrated. On error, everything opened so far is
// released.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}
	initialized := false
	defer func() {
		if !initialized {
			app.cleanup(context.Background())
		}
	}()

	clk, err := clock.NewSystem(cfg.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize clock: %w", err)
	}
	app.clock = clk

	adapter, err := openAdapter(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	app.adapter = adapter
	app.flusher = store.NewFlusher(app.adapter, store.FlusherConfig{}, logger)
	logger.Info("storage initialized", "driver", cfg.Storage.Driver)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	if cfg.Events.AMQPURL != "" {
		publisher, err := amqp.Dial(cfg.Events.AMQPURL, cfg.Events.Exchange, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
		}
		app.publisher = publisher
		app.asyncEvents = events.NewAsyncHandler(app.publisher, events.AsyncConfig{}, logger)
		app.eventEmitter.RegisterHandler(app.asyncEvents)
	}

	app.progressStore, err = progress.NewStore(progress.Config{
		Adapter:   app.adapter,
		Persister: app.flusher,
		Clock:     app.clock,
		Limits: domain.QuotaLimits{
			DailySolves:  cfg.Limits.FreeDailySolves,
			DailyQuizzes: cfg.Limits.FreeDailyQuizzes,
		},
		Emitter: app.eventEmitter,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create progress store: %w", err)
	}
	if err := app.progressStore.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load user progress: %w", err)
	}

	app.quizStore, err = quiz.NewStore(quiz.Config{
		Adapter:   app.adapter,
		Persister: app.flusher,
		Clock:     app.clock,
		Emitter:   app.eventEmitter,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz store: %w", err)
	}
	if err := app.quizStore.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load quiz state: %w", err)
	}

	generator, err := newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	verifier, err := newVerifier(cfg.Entitlement, app.clock, logger)
	if err != nil {
		return nil, err
	}

	app.studyService, err = service.NewStudyService(service.StudyConfig{
		Progress:      app.progressStore,
		Quiz:          app.quizStore,
		Generator:     generator,
		Verifier:      verifier,
		Rewards:       cfg.Rewards,
		QuestionCount: cfg.LLM.QuizQuestionCount,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	profile := app.progressStore.Profile()
	logger.Info("application initialized",
		"user_id", profile.UserID,
		"level", profile.Level,
		"is_pro", profile.IsPro)
	initialized = true
	return app, nil
}

// newGenerator returns nil, nil when no API key is configured so that the
// AI features report themselves as disabled.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	if cfg.GeminiAPIKey == "" {
		logger.Warn("gemini API key not set; AI generation disabled")
		return nil, nil
	}

	g, err := gemini.NewGenerator(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", "model", cfg.ModelName)
	return g, nil
}

// newVerifier returns nil, nil when no receipt secret is configured.
func newVerifier(cfg config.EntitlementConfig, clk clock.Clock, logger *slog.Logger) (service.ReceiptVerifier, error) {
	v, err := entitlement.NewVerifier(cfg, clk)
	if errors.Is(err, entitlement.ErrNotConfigured) {
		logger.Warn("receipt secret not set; pro upgrades disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize receipt verifier: %w", err)
	}
	return v, nil
}

// cleanup drains pending work and releases resources in dependency order:
// queued events, then pending snapshots, then the broker and the storage
// backend.
func (app *application) cleanup(ctx context.Context) {
	if app.asyncEvents != nil {
		if err := app.asyncEvents.Close(ctx); err != nil {
			app.logger.Error("failed to drain event queue", "error", err)
		}
	}

	if app.flusher != nil {
		if err := app.flusher.Close(ctx); err != nil {
			app.logger.Error("failed to flush pending state", "error", err)
		}
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("failed to close event publisher", "error", err)
		}
	}

	if app.adapter != nil {
		if err := app.adapter.Close(); err != nil {
			app.logger.Error("failed to close storage", "error", err)
		}
	}
}
