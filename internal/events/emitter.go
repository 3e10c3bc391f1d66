package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter fans progress and quiz events out to the handlers
// registered at startup. Dispatch is synchronous and in registration order;
// slow sinks such as the broker publisher are wrapped in an AsyncHandler.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter returns an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to every event emitted afterwards.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	count := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("event handler subscribed", "handlers", count)
}

// EmitEvent delivers event to every handler, even after one of them fails.
// The returned error joins each handler failure tagged with its position.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := append([]EventHandler(nil), e.handlers...)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	var errs []error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.WarnContext(ctx, "event delivery failed",
				"event_type", event.Type,
				"event_id", event.ID,
				"handler", i,
				"error", err)
			errs = append(errs, fmt.Errorf("handler %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}
