package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all adapter implementations.
var (
	// ErrNotFound is returned when no blob exists for a key.
	ErrNotFound = errors.New("entity not found")

	// ErrUnsupportedVersion is returned when a persisted blob was written with a
	// schema version newer than this build understands.
	ErrUnsupportedVersion = errors.New("unsupported schema version")

	// ErrInvalidKey is returned when a key cannot be mapped to the backing medium.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidBlob is returned when a backend rejects a blob's contents.
	ErrInvalidBlob = errors.New("invalid blob")

	// ErrFlusherClosed is returned when a snapshot is enqueued after Close.
	ErrFlusherClosed = errors.New("flusher is closed")
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for adapter errors with additional context.
type StoreError struct {
	Key       string // The blob key (e.g., "user-store")
	Operation string // The operation that failed (e.g., "get", "set")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Key, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Key, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given key, operation, message, and wrapped error.
func NewStoreError(key, operation, message string, err error) *StoreError {
	return &StoreError{
		Key:       key,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
