package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds each background adapter write.
const DefaultWriteTimeout = 5 * time.Second

// Retry delays for snapshots whose background write failed. The delay doubles
// after each consecutive failure up to MaxRetryDelay and resets on success.
const (
	DefaultRetryDelay = time.Second
	MaxRetryDelay     = 30 * time.Second
)

// Flusher writes state snapshots to an Adapter in the background.
//
// Enqueue never blocks on I/O: it records the latest snapshot per key and
// wakes a single writer goroutine. Snapshots for the same key coalesce, so
// only the newest one is written. Writes are serialized, which keeps the
// durable order consistent with the enqueue order.
type Flusher struct {
	adapter      Adapter
	logger       *slog.Logger
	writeTimeout time.Duration
	retryDelay   time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	closed  bool

	// writeMu serializes draining so an older snapshot can never overwrite a
	// newer one.
	writeMu sync.Mutex

	wake chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup

	errorHandler func(key string, err error)
}

// FlusherConfig holds configuration options for the flusher.
type FlusherConfig struct {
	// WriteTimeout bounds each adapter write. Zero selects DefaultWriteTimeout.
	WriteTimeout time.Duration

	// RetryDelay is the first wait before a failed snapshot is written again.
	// Zero selects DefaultRetryDelay.
	RetryDelay time.Duration
}

// NewFlusher starts a flusher writing to adapter.
func NewFlusher(adapter Adapter, config FlusherConfig, logger *slog.Logger) *Flusher {
	timeout := config.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	retryDelay := config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	f := &Flusher{
		adapter:      adapter,
		logger:       logger.With("component", "flusher"),
		writeTimeout: timeout,
		retryDelay:   retryDelay,
		pending:      make(map[string][]byte),
		wake:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
	}

	f.wg.Add(1)
	go f.run()

	return f
}

// SetErrorHandler registers a callback for failed background writes.
// If nil, errors are only logged.
func (f *Flusher) SetErrorHandler(handler func(key string, err error)) {
	f.mu.Lock()
	f.errorHandler = handler
	f.mu.Unlock()
}

// Enqueue schedules value to be written under key, replacing any snapshot of
// the same key that has not been written yet.
func (f *Flusher) Enqueue(key string, value []byte) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFlusherClosed
	}
	f.pending[key] = value
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
		// a wake-up is already pending
	}
	return nil
}

// Flush synchronously writes every pending snapshot and returns the joined
// write errors. Failed snapshots stay pending unless superseded.
func (f *Flusher) Flush(ctx context.Context) error {
	return f.drain(ctx)
}

// Close stops accepting snapshots, drains what is pending and stops the
// background writer.
func (f *Flusher) Close(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	close(f.stop)
	f.wg.Wait()

	err := f.drain(ctx)
	f.logger.Info("flusher closed")
	return err
}

// Pending reports how many keys are waiting to be written.
func (f *Flusher) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// run writes pending snapshots when woken. After a failed write it retries
// with exponential backoff until the snapshot lands or is superseded.
func (f *Flusher) run() {
	defer f.wg.Done()

	var retry *time.Timer
	var retryC <-chan time.Time
	stopRetry := func() {
		if retry != nil {
			retry.Stop()
			retry, retryC = nil, nil
		}
	}
	defer stopRetry()

	delay := f.retryDelay
	for {
		select {
		case <-f.wake:
		case <-retryC:
			retry, retryC = nil, nil
			f.logger.Debug("retrying failed state snapshots", "pending", f.Pending())
		case <-f.stop:
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), f.writeTimeout)
		err := f.drain(ctx)
		cancel()

		stopRetry()
		if err == nil {
			delay = f.retryDelay
			continue
		}
		if f.Pending() > 0 {
			retry = time.NewTimer(delay)
			retryC = retry.C
			delay = min(delay*2, MaxRetryDelay)
		}
	}
}

func (f *Flusher) drain(ctx context.Context) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	f.mu.Lock()
	batch := f.pending
	f.pending = make(map[string][]byte)
	handler := f.errorHandler
	f.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		value := batch[key]
		if err := f.adapter.Set(ctx, key, value); err != nil {
			f.logger.Error("failed to persist state snapshot",
				"key", key,
				"bytes", len(value),
				"error", err)

			f.mu.Lock()
			if _, newer := f.pending[key]; !newer {
				f.pending[key] = value
			}
			f.mu.Unlock()

			if handler != nil {
				handler(key, err)
			}
			errs = append(errs, err)
			continue
		}
		f.logger.Debug("state snapshot persisted", "key", key, "bytes", len(value))
	}

	return errors.Join(errs...)
}
