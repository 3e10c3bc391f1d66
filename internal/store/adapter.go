package store

import (
	"context"
	"fmt"
	"regexp"
)

// Keys of the two persisted state blobs.
const (
	UserStoreKey = "user-store"
	QuizStoreKey = "quiz-store"
)

// Adapter is a durable key-value store of JSON blobs.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous blob.
	Set(ctx context.Context, key string, value []byte) error

	// Close releases the adapter's resources.
	Close() error
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)

// ValidateKey rejects keys that could escape a namespace or a directory.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Persister accepts serialized state snapshots for asynchronous writing.
// *Flusher satisfies it.
type Persister interface {
	Enqueue(key string, value []byte) error
}

var _ Persister = (*Flusher)(nil)
