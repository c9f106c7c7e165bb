package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalArchive implements Archive using a directory on local disk.
type LocalArchive struct {
	dir string
}

// NewLocalArchive creates a new LocalArchive rooted at dir.
// If dir is empty, a subdirectory of os.TempDir() is used.
// The directory is created if it doesn't exist.
func NewLocalArchive(dir string) (*LocalArchive, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "mediagen")
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	return &LocalArchive{dir: dir}, nil
}

// Dir returns the archive directory path.
func (a *LocalArchive) Dir() string {
	return a.dir
}

// Store writes asset data to a file under the archive directory and
// returns the file path. The key may contain path separators; any
// intermediate directories are created.
func (a *LocalArchive) Store(ctx context.Context, key string, data io.Reader) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	path := filepath.Join(a.dir, filepath.Clean(key))
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("create archive subdirectory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 - path is derived from a run-scoped key
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write archive file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close archive file: %w", err)
	}

	return path, nil
}

// Compile-time check that LocalArchive implements Archive.
var _ Archive = (*LocalArchive)(nil)
