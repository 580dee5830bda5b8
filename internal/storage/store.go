// Package storage keeps uploaded document content, addressed by stored name.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when no content exists under a name.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned for names that could escape the store.
	ErrInvalidName = errors.New("invalid file name")
)

// Store is a flat namespace of binary objects.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}
