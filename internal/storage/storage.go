// Package storage provides the durable key-value storage that holds hark's
// library between runs.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when nothing is stored under a key.
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned for empty keys or keys that are not plain names.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Storage stores opaque values under string keys.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the storage for a backend name. dir is used by the file
// backend and dsn by the SQLite backend.
func Open(backend, dir, dsn string) (Storage, error) {
	switch backend {
	case BackendFile, "":
		return NewFile(dir)
	case BackendSQLite:
		return NewSQLite(dsn)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
