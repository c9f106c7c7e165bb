// Package collector downloads the result assets of a finished task in
// index order. Collection is all-or-nothing: a single failed download
// fails the whole run.
package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xlei/mediagen-api/internal/media"
	"github.com/xlei/mediagen-api/internal/provider"
	"github.com/xlei/mediagen-api/internal/storage"
	"github.com/xlei/mediagen-api/internal/task"
)

// ErrNoAssets is returned when a finished task reported no asset URLs.
var ErrNoAssets = errors.New("task finished without assets")

// Collector downloads, validates and optionally archives result assets.
type Collector struct {
	provider  provider.Provider
	archive   storage.Archive
	maxAssets int
	logger    *slog.Logger
}

// Option configures the Collector.
type Option func(*Collector)

// WithArchive enables asset archival through the given store.
func WithArchive(a storage.Archive) Option {
	return func(c *Collector) { c.archive = a }
}

// WithMaxAssets caps how many assets are collected per task.
func WithMaxAssets(n int) Option {
	return func(c *Collector) {
		if n > 0 {
			c.maxAssets = n
		}
	}
}

// New creates a Collector capped at 4 assets unless overridden.
func New(p provider.Provider, logger *slog.Logger, opts ...Option) *Collector {
	c := &Collector{
		provider:  p,
		maxAssets: 4,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect downloads every asset URL in order, up to the configured cap.
// Image assets are decoded to confirm the payload is a valid image before
// being accepted. Any failure aborts the collection and returns an error.
func (c *Collector) Collect(ctx context.Context, runID string, kind task.AssetKind, urls []string) ([]task.Asset, error) {
	if len(urls) == 0 {
		return nil, ErrNoAssets
	}
	if len(urls) > c.maxAssets {
		c.logger.Warn("truncating asset list",
			"run_id", runID,
			"reported", len(urls),
			"cap", c.maxAssets)
		urls = urls[:c.maxAssets]
	}

	assets := make([]task.Asset, 0, len(urls))
	for i, url := range urls {
		data, err := c.provider.Download(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("download asset %d: %w", i, err)
		}
		if kind == task.KindImage {
			if _, err := media.DecodeImage(data); err != nil {
				return nil, fmt.Errorf("decode asset %d: %w", i, err)
			}
		}

		asset := task.Asset{
			Index:     i,
			Kind:      kind,
			RemoteURL: url,
			Bytes:     data,
		}
		if c.archive != nil {
			key := archiveKey(runID, kind, i)
			ref, err := c.archive.Store(ctx, key, bytes.NewReader(data))
			if err != nil {
				c.logger.Warn("asset archival failed",
					"run_id", runID,
					"index", i,
					"error", err)
			} else {
				asset.SourceRef = ref
			}
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func archiveKey(runID string, kind task.AssetKind, index int) string {
	ext := "png"
	if kind == task.KindVideo {
		ext = "mp4"
	}
	return fmt.Sprintf("%s/asset_%d.%s", runID, index, ext)
}
