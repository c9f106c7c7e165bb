// Package uploader pushes local reference assets to the vendor before
// submission. Uploads run sequentially and stop at the first failure.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xlei/mediagen-api/internal/provider"
)

// ErrNoAssets is returned when UploadAll is called with an empty input list.
var ErrNoAssets = errors.New("no assets to upload")

// Input is a single local asset to upload.
type Input struct {
	Name string
	Data []byte
}

// Error reports which asset in the input sequence failed to upload.
type Error struct {
	Index int
	Name  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload asset %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Uploader uploads reference assets through a provider.
type Uploader struct {
	provider provider.Provider
	logger   *slog.Logger
}

// New creates a new Uploader.
func New(p provider.Provider, logger *slog.Logger) *Uploader {
	return &Uploader{provider: p, logger: logger}
}

// UploadAll uploads every input in order and returns the resulting vendor
// references in the same order. The first failure aborts the sequence; no
// further uploads are attempted and the error carries the failing index.
func (u *Uploader) UploadAll(ctx context.Context, inputs []Input) ([]string, error) {
	if len(inputs) == 0 {
		return nil, ErrNoAssets
	}

	refs := make([]string, 0, len(inputs))
	for i, in := range inputs {
		ref, err := u.provider.UploadAsset(ctx, in.Name, in.Data)
		if err != nil {
			u.logger.Error("asset upload failed",
				"index", i,
				"name", in.Name,
				"error", err)
			return nil, &Error{Index: i, Name: in.Name, Err: err}
		}
		u.logger.Debug("asset uploaded",
			"index", i,
			"name", in.Name,
			"ref", ref)
		refs = append(refs, ref)
	}
	return refs, nil
}
