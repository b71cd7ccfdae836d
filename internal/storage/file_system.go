package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type fs struct {
	workspace string
}

// NewFileSystem returns a new File System backend rooted at workspace.
func NewFileSystem(workspace string) Backend {
	return &fs{
		workspace: workspace,
	}
}

func (b *fs) Name() string {
	return "file_system"
}

func (b *fs) Reader(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	rc, err := os.Open(b.path(key))
	if os.IsNotExist(err) {
		return nil, errors.WithStack(ErrNotExist)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not open blob")
	}
	return rc, nil
}

func (b *fs) Writer(ctx context.Context, key string) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := os.MkdirAll(b.workspace, 0755); err != nil {
		return nil, errors.Wrap(err, "could not create workspace")
	}

	wc, err := os.Create(b.path(key))
	if err != nil {
		return nil, errors.Wrap(err, "could not create blob")
	}
	return wc, nil
}

func (b *fs) Exist(ctx context.Context, key string) bool {
	if ctx.Err() != nil {
		return false
	}

	_, err := os.Stat(b.path(key))
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	return true // ignoring error
}

func (b *fs) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	err := os.Remove(b.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "could not delete blob")
	}
	return nil
}

func (b *fs) path(key string) string {
	// Keys are opaque identifiers, never user input. Base guards against
	// a key smuggling in a path separator anyway.
	return filepath.Join(b.workspace, filepath.Base(key))
}
