package blob

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS is object storage backed by a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS creates a GCS storage client for the given bucket. credentialsFile
// may be empty to use ambient credentials.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

// Upload implements Storage.
func (g *GCS) Upload(ctx context.Context, path string, r io.Reader) error {
	w := g.client.Bucket(g.bucket).Object(path).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to copy object %s to GCS: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for %s: %w", path, err)
	}
	return nil
}

// DownloadURL implements Storage. Objects are served through the public GCS
// endpoint; the bucket's access policy decides who can actually read them.
func (g *GCS) DownloadURL(_ context.Context, path string) (string, error) {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, path), nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
