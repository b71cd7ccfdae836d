package model

import (
	"math"
	"time"
)

// A File represents an uploaded blob and its expiry window.
type File struct {
	Base `json:",inline" storm:"inline"`

	OriginalName  string    `json:"original_name"`
	StorageKey    string    `json:"storage_key"    storm:"unique"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	Checksum      string    `json:"checksum"`
	ExpiresAt     time.Time `json:"expires_at"     storm:"index"`
	DownloadCount int64     `json:"download_count"`
}

// Expired returns true once now is strictly past the expiry time.
func (f *File) Expired(now time.Time) bool {
	return now.After(f.ExpiresAt)
}

// TimeRemaining returns the whole hours left before expiry, rounded up
// and floored at zero.
func (f *File) TimeRemaining(now time.Time) int {
	remaining := f.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours()))
}
