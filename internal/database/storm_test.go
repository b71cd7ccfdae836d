package database_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Amvnn/QuickShare/internal/database"
	"github.com/Amvnn/QuickShare/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) database.Client {
	t.Helper()

	workspace, err := os.MkdirTemp(os.TempDir(), "quickshare.db.")
	require.NoError(t, err)
	t.Cleanup(func() {
		os.RemoveAll(workspace)
	})

	// StormInit is not used here: it would keep the bolt lock for the
	// whole test. Storm creates the indexes on first save anyway.
	dbname := filepath.Join(workspace, "quickshare.db")
	db, err := database.StormOpen(dbname)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func fixture(id string, expiresAt time.Time) *model.File {
	file := &model.File{
		OriginalName: "a.txt",
		StorageKey:   id + ".txt",
		ContentType:  "text/plain",
		Size:         10,
		ExpiresAt:    expiresAt,
	}
	file.SetID(id)
	return file
}

func TestStormCreateFile(t *testing.T) {
	db := setup(t)

	file := fixture("file-1", time.Now().Add(time.Hour))
	require.NoError(t, db.CreateFile(file))
	assert.False(t, file.CreatedAt.IsZero())

	found, err := db.FindFile("file-1")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", found.OriginalName)
	assert.EqualValues(t, 0, found.DownloadCount)

	//

	err = db.CreateFile(fixture("file-1", time.Now().Add(time.Hour)))
	assert.Error(t, err)
	assert.True(t, db.IsConflict(err))
}

func TestStormFindFileNotFound(t *testing.T) {
	db := setup(t)

	_, err := db.FindFile("ghost")
	assert.Error(t, err)
	assert.True(t, db.IsNotFound(err))
}

func TestStormIncrementDownloadCount(t *testing.T) {
	db := setup(t)

	require.NoError(t, db.CreateFile(fixture("file-1", time.Now().Add(time.Hour))))

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, db.IncrementDownloadCount("file-1"))
		}()
	}
	wg.Wait()

	found, err := db.FindFile("file-1")
	require.NoError(t, err)
	assert.EqualValues(t, n, found.DownloadCount)
}

func TestStormExpiredFiles(t *testing.T) {
	db := setup(t)
	now := time.Now().UTC()

	require.NoError(t, db.CreateFile(fixture("old-1", now.Add(-2*time.Hour))))
	require.NoError(t, db.CreateFile(fixture("old-2", now.Add(-time.Minute))))
	require.NoError(t, db.CreateFile(fixture("live-1", now.Add(time.Hour))))

	files, err := db.ExpiredFiles(now)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "old-1", files[0].ID)
	assert.Equal(t, "old-2", files[1].ID)

	//

	files, err = db.ExpiredFiles(now.Add(-3 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStormDelete(t *testing.T) {
	db := setup(t)

	file := fixture("file-1", time.Now().Add(time.Hour))
	require.NoError(t, db.CreateFile(file))
	require.NoError(t, db.Delete(file))

	_, err := db.FindFile("file-1")
	assert.True(t, db.IsNotFound(err))
}
