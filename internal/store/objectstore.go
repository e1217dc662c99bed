package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes one listed object
type ObjectInfo struct {
	Key     string
	Size    int64
	Updated time.Time
}

// ObjectStore is the provider-agnostic contract the transcript store runs
// against. Walk visits objects under a prefix in provider listing order,
// page by page; returning false from fn stops the walk early.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Walk(ctx context.Context, prefix string, fn func(ObjectInfo) bool) error
}
