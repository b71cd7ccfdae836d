package database

import (
	"time"

	"github.com/Amvnn/QuickShare/internal/model"
	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/json"
	"github.com/asdine/storm/v3/q"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(json.Codec)

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}

	err = db.Init(&model.File{})
	return errors.Wrap(err, "could not init file index")
}

func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}

	err = db.ReIndex(&model.File{})
	return errors.Wrap(err, "could not ReIndex files")
}

func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

func (c *strm) Close() error {
	return c.db.Close()
}

func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

func (c *strm) IsConflict(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

//
// File
//

func (c *strm) CreateFile(f *model.File) error {
	t := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.SetCreatedAt(t)
	}
	f.SetUpdatedAt(t)

	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not open transaction")
	}
	defer tx.Rollback()

	var existing model.File
	err = tx.One("ID", f.ID, &existing)
	if err == nil {
		return errors.WithStack(storm.ErrAlreadyExists)
	}
	if err != storm.ErrNotFound {
		return errors.Wrap(err, "could not check file existence")
	}

	if err = tx.Save(f); err != nil {
		return errors.Wrap(err, "could not create file")
	}

	return errors.Wrap(tx.Commit(), "could not commit file")
}

func (c *strm) FindFile(id string) (*model.File, error) {
	var file model.File
	err := c.db.One("ID", id, &file)
	return &file, errors.Wrap(err, "could not find file")
}

// IncrementDownloadCount performs the increment inside a single write
// transaction so concurrent calls never lose an update.
func (c *strm) IncrementDownloadCount(id string) error {
	tx, err := c.db.Begin(true)
	if err != nil {
		return errors.Wrap(err, "could not open transaction")
	}
	defer tx.Rollback()

	var file model.File
	if err = tx.One("ID", id, &file); err != nil {
		return errors.Wrap(err, "could not find file")
	}

	file.DownloadCount++
	file.SetUpdatedAt(time.Now().UTC())

	if err = tx.Save(&file); err != nil {
		return errors.Wrap(err, "could not update download count")
	}

	return errors.Wrap(tx.Commit(), "could not commit download count")
}

func (c *strm) ExpiredFiles(now time.Time) ([]*model.File, error) {
	files := make([]*model.File, 0)
	err := c.db.Select(q.Lte("ExpiresAt", now)).OrderBy("ExpiresAt").Find(&files)
	if errors.Cause(err) == storm.ErrNotFound {
		return files, nil
	}
	return files, errors.Wrap(err, "could not get expired files")
}
