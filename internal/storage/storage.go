package storage

import (
	"context"
	"time"
)

// Object describes one stored item.
type Object struct {
	Key      string
	Size     int64
	Modified time.Time
}

// Store persists uploaded and generated images. Keys are slash separated and
// relative to the store root.
type Store interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
	// Read fails with domain.ErrNotFound when the key does not exist.
	Read(ctx context.Context, key string) ([]byte, error)
	// List returns the objects directly under prefix, newest first.
	List(ctx context.Context, prefix string) ([]Object, error)
}
