package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File is an Adapter that keeps one JSON file per key in a directory.
// Writes go to a temporary file that is renamed into place, so a crash
// mid-write leaves the previous blob intact.
type File struct {
	dir string
	mu  sync.Mutex
}

var _ Adapter = (*File)(nil)

// NewFile creates dir if needed and returns a File adapter rooted there.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file adapter requires a directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get implements Adapter.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStoreError(key, "get", "read file", err)
	}
	return data, nil
}

// Set implements Adapter.
func (f *File) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return NewStoreError(key, "set", "create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return NewStoreError(key, "set", "write temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return NewStoreError(key, "set", "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return NewStoreError(key, "set", "close temp file", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return NewStoreError(key, "set", "rename temp file", err)
	}
	return nil
}

// Close implements Adapter.
func (f *File) Close() error {
	return nil
}
