// Package registry implements the expiring-object store. It owns the whole
// lifecycle of an uploaded file: admission, identifier generation, the
// blob+metadata write pair, expiry-checked reads with download counting, and
// the reclamation sweep.
package registry

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Amvnn/QuickShare/internal/database"
	"github.com/Amvnn/QuickShare/internal/model"
	"github.com/Amvnn/QuickShare/internal/storage"
	"github.com/gofrs/uuid"
	"github.com/mdouchement/logger"
	"github.com/pkg/errors"
)

// admitAttempts bounds the retry loop on identifier collision.
const admitAttempts = 3

type (
	// A Config holds the admission rules and operation bounds of a Registry.
	Config struct {
		// MaxSize is the largest accepted upload, in bytes.
		MaxSize int64
		// DefaultTTL applies when the caller does not specify one.
		DefaultTTL time.Duration
		// AllowedTypes lists the accepted content types.
		// An empty list accepts everything.
		AllowedTypes []string
		// OpTimeout bounds a single blob operation.
		OpTimeout time.Duration
	}

	// A Registry orchestrates the blob backend and the metadata database.
	Registry struct {
		logger  logger.Logger
		db      database.Client
		storage storage.Backend
		config  Config
		allowed map[string]bool
		now     func() time.Time
	}

	// A Report summarizes a Sweep run.
	Report struct {
		Deleted int
		Errors  int
	}
)

// New returns a new Registry.
func New(l logger.Logger, db database.Client, backend storage.Backend, config Config) *Registry {
	if config.MaxSize <= 0 {
		config.MaxSize = 50 << 20
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = 24 * time.Hour
	}
	if config.OpTimeout <= 0 {
		config.OpTimeout = 30 * time.Second
	}

	allowed := make(map[string]bool, len(config.AllowedTypes))
	for _, contentType := range config.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(contentType))] = true
	}

	return &Registry{
		logger:  l.WithPrefix("[registry]"),
		db:      db,
		storage: backend,
		config:  config,
		allowed: allowed,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Admit validates the upload, stores the blob and commits its record.
// Either both the blob and the record persist, or neither does.
func (r *Registry) Admit(ctx context.Context, content []byte, originalName, contentType string, size int64, ttl time.Duration) (*model.File, error) {
	if len(r.allowed) > 0 && !r.allowed[strings.ToLower(contentType)] {
		return nil, &AdmissionError{Reason: fmt.Sprintf("content type %q is not allowed", contentType)}
	}
	if size < 0 || size != int64(len(content)) {
		return nil, &AdmissionError{Reason: "declared size does not match content"}
	}
	if size > r.config.MaxSize {
		return nil, &AdmissionError{Reason: fmt.Sprintf("size %d exceeds the maximum of %d bytes", size, r.config.MaxSize)}
	}
	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}
	if ttl < 0 {
		return nil, &AdmissionError{Reason: "ttl must be positive"}
	}

	for attempt := 0; attempt < admitAttempts; attempt++ {
		id := uuid.Must(uuid.NewV4()).String()
		key := storageKey(id, originalName)

		checksum, err := r.store(ctx, key, content)
		if err != nil {
			return nil, err
		}

		now := r.now()
		file := &model.File{
			OriginalName: originalName,
			StorageKey:   key,
			ContentType:  contentType,
			Size:         size,
			Checksum:     checksum,
			ExpiresAt:    now.Add(ttl),
		}
		file.SetID(id)
		file.SetCreatedAt(now)

		err = r.db.CreateFile(file)
		if err == nil {
			return file, nil
		}

		// The record did not commit, the blob must not survive.
		r.discard(key)

		if r.db.IsConflict(err) {
			continue
		}
		return nil, &MetadataError{Op: "insert", Err: err}
	}

	return nil, &MetadataError{Op: "insert", Err: errors.New("could not allocate a unique identifier")}
}

// Fetch returns the record and a reader on its blob, and counts the download.
// Expiry is checked against the clock at call time, whether or not a sweep
// has reclaimed the record yet.
func (r *Registry) Fetch(ctx context.Context, id string) (*model.File, io.ReadCloser, error) {
	file, err := r.find(id)
	if err != nil {
		return nil, nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, r.config.OpTimeout)
	rc, err := r.storage.Reader(rctx, file.StorageKey)
	cancel()
	if storage.IsNotExist(err) {
		// Either a sweep won the race or the blob vanished under a live
		// record. The latter deserves a repair, not a crash.
		r.logger.Warnf("blob %s is missing for record %s", file.StorageKey, file.ID)
		return nil, nil, errors.WithStack(ErrNotFound)
	}
	if err != nil {
		return nil, nil, &StorageError{Op: "read", Err: err}
	}

	if err = r.db.IncrementDownloadCount(file.ID); err != nil {
		if r.db.IsNotFound(err) {
			rc.Close()
			return nil, nil, errors.WithStack(ErrNotFound)
		}
		// The blob was read, serve it anyway.
		r.logger.Errorf("could not count download of %s: %s", file.ID, err)
	} else {
		file.DownloadCount++
	}

	return file, rc, nil
}

// Status returns the record without touching the blob or the counter.
func (r *Registry) Status(_ context.Context, id string) (*model.File, error) {
	return r.find(id)
}

// Sweep deletes every expired blob and record. A record whose blob could not
// be deleted is kept and counted as an error so a later run retries it.
// Overlapping sweeps are harmless: both deletions are idempotent.
func (r *Registry) Sweep(ctx context.Context) (Report, error) {
	var report Report
	log := r.logger.WithPrefix("[sweep]")

	files, err := r.db.ExpiredFiles(r.now())
	if err != nil {
		return report, &MetadataError{Op: "expired range", Err: err}
	}

	for _, file := range files {
		if err = ctx.Err(); err != nil {
			return report, errors.WithStack(err)
		}

		rctx, cancel := context.WithTimeout(ctx, r.config.OpTimeout)
		err = r.storage.Remove(rctx, file.StorageKey)
		cancel()
		if err != nil {
			log.Errorf("could not delete blob %s: %s", file.StorageKey, err)
			report.Errors++
			continue
		}

		if err = r.db.Delete(file); err != nil {
			if r.db.IsNotFound(err) {
				continue // already reclaimed by a concurrent sweep
			}
			log.Errorf("could not delete record %s: %s", file.ID, err)
			report.Errors++
			continue
		}

		report.Deleted++
		log.Infof("Removed %s (%s)", file.ID, file.OriginalName)
	}

	return report, nil
}

func (r *Registry) find(id string) (*model.File, error) {
	file, err := r.db.FindFile(id)
	if err != nil {
		if r.db.IsNotFound(err) {
			return nil, errors.WithStack(ErrNotFound)
		}
		return nil, &MetadataError{Op: "lookup", Err: err}
	}

	if file.Expired(r.now()) {
		return nil, &ExpiredError{ExpiresAt: file.ExpiresAt}
	}
	return file, nil
}

func (r *Registry) store(ctx context.Context, key string, content []byte) (string, error) {
	wctx, cancel := context.WithTimeout(ctx, r.config.OpTimeout)
	defer cancel()

	wc, err := r.storage.Writer(wctx, key)
	if err != nil {
		return "", &StorageError{Op: "write", Err: err}
	}

	h := md5.New()
	_, err = io.Copy(io.MultiWriter(h, wc), bytes.NewReader(content))
	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		r.discard(key)
		return "", &StorageError{Op: "write", Err: err}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// discard removes a blob whose record never committed. It runs detached from
// the caller's context: a client disconnect must not leave a dangling blob.
func (r *Registry) discard(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.OpTimeout)
	defer cancel()

	if err := r.storage.Remove(ctx, key); err != nil {
		r.logger.Errorf("could not discard orphan blob %s: %s", key, err)
	}
}

// storageKey derives the blob key from the identifier, keeping the original
// extension for content type fidelity.
func storageKey(id, originalName string) string {
	ext := filepath.Ext(originalName)
	if ext == "." || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return id + ext
}
