package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FS is object storage on the local filesystem, for development and tests.
type FS struct {
	root string
}

// NewFS creates filesystem storage rooted at dir.
func NewFS(dir string) *FS {
	return &FS{root: dir}
}

// Upload implements Storage.
func (f *FS) Upload(_ context.Context, path string, r io.Reader) error {
	full := filepath.Join(f.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create object file %s: %w", path, err)
	}
	defer file.Close()
	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("failed to write object %s: %w", path, err)
	}
	return nil
}

// DownloadURL implements Storage.
func (f *FS) DownloadURL(_ context.Context, path string) (string, error) {
	full, err := filepath.Abs(filepath.Join(f.root, filepath.FromSlash(path)))
	if err != nil {
		return "", fmt.Errorf("failed to resolve object path %s: %w", path, err)
	}
	return "file://" + filepath.ToSlash(full), nil
}
