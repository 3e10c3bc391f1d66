package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Errors returned by AsyncHandler.HandleEvent.
var (
	ErrQueueClosed = errors.New("event queue is closed")
	ErrQueueFull   = errors.New("event queue is full")
)

// AsyncConfig holds configuration options for an AsyncHandler.
type AsyncConfig struct {
	// QueueSize is the number of events buffered ahead of the workers.
	// If zero or negative, defaults to 100.
	QueueSize int

	// WorkerCount determines how many events are delivered concurrently.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// DeliveryTimeout bounds each call to the wrapped handler.
	// If zero, defaults to 5 seconds.
	DeliveryTimeout time.Duration
}

// AsyncHandler queues events and delivers them to a slower handler (such as
// a message broker publisher) from background workers, so that emitting
// never waits on network I/O.
type AsyncHandler struct {
	next    EventHandler
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	queue  chan *Event
	closed bool

	wg sync.WaitGroup
}

var _ EventHandler = (*AsyncHandler)(nil)

// NewAsyncHandler starts the workers delivering to next.
func NewAsyncHandler(next EventHandler, config AsyncConfig, logger *slog.Logger) *AsyncHandler {
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = 5 * time.Second
	}

	h := &AsyncHandler{
		next:    next,
		timeout: config.DeliveryTimeout,
		logger:  logger.With("component", "async_event_handler"),
		queue:   make(chan *Event, config.QueueSize),
	}

	for i := 0; i < config.WorkerCount; i++ {
		h.wg.Add(1)
		go h.worker(i)
	}
	return h
}

// HandleEvent queues event for delivery. It never blocks; a full queue
// drops the event and reports ErrQueueFull.
func (h *AsyncHandler) HandleEvent(_ context.Context, event *Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrQueueClosed
	}

	select {
	case h.queue <- event:
		return nil
	default:
		h.logger.Warn("dropping event, queue full",
			"event_id", event.ID,
			"event_type", event.Type,
			"queue_cap", cap(h.queue))
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(h.queue))
	}
}

// Close stops accepting events and waits until the queued ones are
// delivered or ctx is done.
func (h *AsyncHandler) Close(ctx context.Context) error {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.queue)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events still queued at shutdown: %w", ctx.Err())
	}
}

func (h *AsyncHandler) worker(id int) {
	defer h.wg.Done()

	for event := range h.queue {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		err := h.next.HandleEvent(ctx, event)
		cancel()

		if err != nil {
			h.logger.Error("event delivery failed",
				"worker_id", id,
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
		}
	}
}
