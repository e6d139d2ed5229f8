package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested key does not exist in the store.
var ErrNotFound = errors.New("not found")

// Store is a key-value blob store used for archive exports. Keys use
// forward-slash separators regardless of backend.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}
