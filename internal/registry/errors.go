package registry

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no live record exists for the identifier.
// A record whose blob vanished from storage is reported the same way.
var ErrNotFound = errors.New("file not found")

// An AdmissionError rejects an upload before anything is persisted.
type AdmissionError struct {
	Reason string
}

func (e *AdmissionError) Error() string {
	return "admission rejected: " + e.Reason
}

// An ExpiredError is returned for a known record past its expiry time.
type ExpiredError struct {
	ExpiresAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("file expired at %s", e.ExpiresAt.Format(time.RFC3339))
}

// A StorageError wraps a blob backend failure.
type StorageError struct {
	Op  string // write, read or delete
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// A MetadataError wraps a database failure.
type MetadataError struct {
	Op  string
	Err error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata %s: %s", e.Op, e.Err)
}

func (e *MetadataError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err reports an unknown or vanished file.
func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

// IsAdmission returns true if err is an admission rejection.
func IsAdmission(err error) bool {
	_, ok := errors.Cause(err).(*AdmissionError)
	return ok
}

// IsExpired returns true if err reports an expired file.
func IsExpired(err error) bool {
	_, ok := errors.Cause(err).(*ExpiredError)
	return ok
}

// IsStorage returns true if err is a blob backend failure.
func IsStorage(err error) bool {
	_, ok := errors.Cause(err).(*StorageError)
	return ok
}
