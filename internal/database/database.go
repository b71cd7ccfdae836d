package database

import (
	"time"

	"github.com/Amvnn/QuickShare/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsConflict returns true if err is a unique constraint violation.
		IsConflict(err error) bool

		FileInteraction
	}

	// A FileInteraction defines all the methods used to interact with a file record.
	// A record is only ever created, counter-incremented and deleted.
	FileInteraction interface {
		// CreateFile inserts the record. It fails with a conflict error if a
		// record with the same ID already exists.
		CreateFile(f *model.File) error
		FindFile(id string) (*model.File, error)
		// IncrementDownloadCount adds one to the record's download counter
		// as a single atomic update.
		IncrementDownloadCount(id string) error
		// ExpiredFiles returns all the records whose expiry time is at or before now.
		ExpiredFiles(now time.Time) ([]*model.File, error)
	}
)
