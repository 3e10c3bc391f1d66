package store

import (
	"context"
	"sync"
)

// Memory is an in-process Adapter. It is not durable and exists for tests and
// the "memory" storage driver.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty Memory adapter.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

var _ Adapter = (*Memory)(nil)

// Get implements Adapter.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set implements Adapter.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	m.blobs[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

// Close implements Adapter.
func (m *Memory) Close() error {
	return nil
}
