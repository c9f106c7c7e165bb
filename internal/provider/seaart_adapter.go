package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/xlei/mediagen-api/internal/seaart"
)

// SeaArtAdapter adapts the SeaArt client to the Provider interface.
type SeaArtAdapter struct {
	client *seaart.Client
}

// NewSeaArtAdapter creates a new SeaArt provider adapter.
func NewSeaArtAdapter(client *seaart.Client) *SeaArtAdapter {
	return &SeaArtAdapter{client: client}
}

// Name identifies the vendor.
func (a *SeaArtAdapter) Name() string { return "seaart" }

// UploadAsset uploads an asset through the presign flow.
func (a *SeaArtAdapter) UploadAsset(ctx context.Context, name string, data []byte) (string, error) {
	url, err := a.client.UploadImage(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("seaart adapter upload: %w", err)
	}
	return url, nil
}

// Submit picks the submission variant by output kind and reference count.
func (a *SeaArtAdapter) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	t := seaart.SubmitTask{
		Prompt:      req.Prompt,
		Model:       req.Model,
		Width:       req.Width,
		Height:      req.Height,
		DurationSec: req.DurationSec,
		ImageURLs:   req.ReferenceURLs,
	}

	var (
		taskID string
		err    error
	)
	switch {
	case req.Kind == OutputImages:
		t.NumOutputs = 4
		taskID, err = a.client.SubmitTextToImage(ctx, t)
	case len(req.ReferenceURLs) > 1:
		taskID, err = a.client.SubmitMultiImageToVideo(ctx, t)
	case len(req.ReferenceURLs) == 1:
		taskID, err = a.client.SubmitImageToVideo(ctx, t)
	default:
		taskID, err = a.client.SubmitTextToVideo(ctx, t)
	}
	if err != nil {
		if errors.Is(err, seaart.ErrContentPolicy) {
			return "", fmt.Errorf("%w: %s", ErrContentPolicy, err.Error())
		}
		return "", fmt.Errorf("seaart adapter submit: %w", err)
	}
	return taskID, nil
}

// Poll maps SeaArt progress statuses to the vendor-neutral set. Statuses
// outside the known taxonomy map to StatusFailed.
func (a *SeaArtAdapter) Poll(ctx context.Context, taskID string) (PollResult, error) {
	result, err := a.client.Progress(ctx, taskID)
	if err != nil {
		return PollResult{}, fmt.Errorf("seaart adapter poll: %w", err)
	}

	var status Status
	switch result.Status {
	case seaart.StatusWaiting:
		status = StatusSubmitted
	case seaart.StatusRunning:
		status = StatusRunning
	case seaart.StatusFinished:
		status = StatusSucceeded
	case seaart.StatusCancelled:
		status = StatusCancelled
	default:
		status = StatusFailed
	}

	return PollResult{
		Status:    status,
		Progress:  result.Progress,
		AssetURLs: result.AssetURLs,
		Message:   result.FailMsg,
	}, nil
}

// Balance returns the remaining temporary credit.
func (a *SeaArtAdapter) Balance(ctx context.Context) (int64, error) {
	return a.client.Balance(ctx)
}

// Download fetches result asset bytes.
func (a *SeaArtAdapter) Download(ctx context.Context, url string) ([]byte, error) {
	return a.client.Download(ctx, url)
}

// Compile-time check that SeaArtAdapter implements Provider.
var _ Provider = (*SeaArtAdapter)(nil)
