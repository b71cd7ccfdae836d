package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

// ErrNotExist is returned when no blob is stored under the requested key.
var ErrNotExist = errors.New("blob does not exist")

// Backend is the interface that wraps the blob operations.
type Backend interface {
	// Name returns the name of the backend implementation.
	Name() string

	// Reader returns a ReadCloser of the blob stored under the key.
	// It returns ErrNotExist when there is no such blob.
	Reader(ctx context.Context, key string) (io.ReadCloser, error)
	// Writer returns a WriteCloser of the blob stored under the key.
	Writer(ctx context.Context, key string) (io.WriteCloser, error)

	// Exist returns true if a blob is stored under the key.
	Exist(ctx context.Context, key string) bool

	// Remove deletes the blob stored under the key.
	// Removing an absent blob is not an error.
	Remove(ctx context.Context, key string) error
}

// IsNotExist returns true if err means the blob is absent from the backend.
func IsNotExist(err error) bool {
	return errors.Cause(err) == ErrNotExist
}
