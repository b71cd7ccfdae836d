package serializer

import (
	"time"

	"github.com/Amvnn/QuickShare/internal/model"
)

// Upload returns the serialized form of a freshly admitted file.
func Upload(file *model.File, baseurl string) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"message": "File uploaded successfully",
		"data": map[string]interface{}{
			"fileId":         file.ID,
			"originalName":   file.OriginalName,
			"fileSize":       file.Size,
			"mimeType":       file.ContentType,
			"checksum":       file.Checksum,
			"downloadUrl":    DownloadURL(file, baseurl),
			"expiresAt":      file.ExpiresAt,
			"expiresInHours": file.TimeRemaining(file.CreatedAt),
		},
	}
}

// Status returns the serialized form of the given model with its derived
// expiry fields evaluated at now.
func Status(file *model.File, baseurl string, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"fileId":        file.ID,
			"originalName":  file.OriginalName,
			"fileSize":      file.Size,
			"mimeType":      file.ContentType,
			"uploadedAt":    file.CreatedAt,
			"expiresAt":     file.ExpiresAt,
			"isExpired":     file.Expired(now),
			"timeRemaining": file.TimeRemaining(now),
			"downloadCount": file.DownloadCount,
			"downloadUrl":   DownloadURL(file, baseurl),
		},
	}
}

// DownloadURL returns the public link of the given model.
func DownloadURL(file *model.File, baseurl string) string {
	return baseurl + "/download/" + file.ID
}
