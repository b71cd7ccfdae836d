package storage_test

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/Amvnn/QuickShare/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) storage.Backend {
	t.Helper()

	workspace, err := os.MkdirTemp(os.TempDir(), "quickshare.")
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(workspace)
	})

	return storage.NewFileSystem(workspace)
}

func TestFileSystemRoundTrip(t *testing.T) {
	backend := setup(t)
	ctx := context.Background()

	wc, err := backend.Writer(ctx, "blob-1.txt")
	require.NoError(t, err)
	_, err = wc.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	assert.True(t, backend.Exist(ctx, "blob-1.txt"))

	rc, err := backend.Reader(ctx, "blob-1.txt")
	require.NoError(t, err)
	defer rc.Close()

	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(content))
}

func TestFileSystemReaderNotExist(t *testing.T) {
	backend := setup(t)

	_, err := backend.Reader(context.Background(), "ghost")
	assert.Error(t, err)
	assert.True(t, storage.IsNotExist(err))
}

func TestFileSystemRemove(t *testing.T) {
	backend := setup(t)
	ctx := context.Background()

	wc, err := backend.Writer(ctx, "blob-1.txt")
	require.NoError(t, err)
	require.NoError(t, wc.Close())

	require.NoError(t, backend.Remove(ctx, "blob-1.txt"))
	assert.False(t, backend.Exist(ctx, "blob-1.txt"))

	// Absent blobs are not an error.
	assert.NoError(t, backend.Remove(ctx, "blob-1.txt"))
	assert.NoError(t, backend.Remove(ctx, "never-existed"))
}

func TestFileSystemCancelledContext(t *testing.T) {
	backend := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := backend.Reader(ctx, "blob-1.txt")
	assert.Error(t, err)
	assert.False(t, storage.IsNotExist(err))
}
