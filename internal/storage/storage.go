// Package storage archives generated assets after a successful run.
// It defines the Archive interface (port) and implementations for local
// disk and S3 archival.
package storage

import (
	"context"
	"io"
)

// Archive persists generated assets and returns a reference for later
// retrieval. Implementations keep copies of run outputs so that vendor
// URLs expiring does not lose the result.
type Archive interface {
	// Store persists asset data under the given key and returns a
	// reference (file path or URL) to the stored copy.
	Store(ctx context.Context, key string, data io.Reader) (ref string, err error)
}
