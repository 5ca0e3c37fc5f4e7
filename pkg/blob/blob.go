// Package blob abstracts binary object storage for post images.
package blob

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Storage stores binary objects under slash-separated paths.
type Storage interface {
	// Upload writes the object at path, replacing any existing content.
	Upload(ctx context.Context, path string, r io.Reader) error

	// DownloadURL returns a URL from which the object at path can be read.
	DownloadURL(ctx context.Context, path string) (string, error)
}

// ImageObjectPath returns a fresh object path for a user-uploaded image:
// images/<user>/<random>.jpg.
func ImageObjectPath(userID string) string {
	return "images/" + userID + "/" + uuid.NewString() + ".jpg"
}
