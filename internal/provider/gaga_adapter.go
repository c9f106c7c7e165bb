package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xlei/mediagen-api/internal/gaga"
)

// gagaAssetPrefix marks an upload reference that carries a Gaga asset ID
// instead of a URL. Gaga identifies uploads by numeric ID, so the adapter
// encodes the ID into the reference string it hands back.
const gagaAssetPrefix = "gaga-asset:"

// GagaAdapter adapts the Gaga client to the Provider interface.
type GagaAdapter struct {
	client *gaga.Client
}

// NewGagaAdapter creates a new Gaga provider adapter.
func NewGagaAdapter(client *gaga.Client) *GagaAdapter {
	return &GagaAdapter{client: client}
}

// Name identifies the vendor.
func (a *GagaAdapter) Name() string { return "gaga" }

// UploadAsset uploads raw bytes and returns an opaque asset reference.
func (a *GagaAdapter) UploadAsset(ctx context.Context, name string, data []byte) (string, error) {
	id, err := a.client.UploadAsset(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("gaga adapter upload: %w", err)
	}
	return gagaAssetPrefix + strconv.FormatInt(id, 10), nil
}

// Submit starts a performer generation. Gaga only produces video, so image
// requests are rejected before hitting the API.
func (a *GagaAdapter) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if req.Kind == OutputImages {
		return "", fmt.Errorf("gaga adapter submit: image generation not supported")
	}

	params := gaga.GenerationParams{
		Prompt:   req.Prompt,
		Duration: req.DurationSec,
	}
	if len(req.ReferenceURLs) > 0 {
		id, err := parseGagaAssetRef(req.ReferenceURLs[0])
		if err != nil {
			return "", fmt.Errorf("gaga adapter submit: %w", err)
		}
		params.AssetID = id
	}

	generationID, err := a.client.StartGeneration(ctx, params)
	if err != nil {
		return "", fmt.Errorf("gaga adapter submit: %w", err)
	}
	return strconv.FormatInt(generationID, 10), nil
}

// Poll maps Gaga generation statuses to the vendor-neutral set.
func (a *GagaAdapter) Poll(ctx context.Context, taskID string) (PollResult, error) {
	id, err := strconv.ParseInt(taskID, 10, 64)
	if err != nil {
		return PollResult{}, fmt.Errorf("gaga adapter poll: invalid generation id %q: %w", taskID, err)
	}

	result, err := a.client.Poll(ctx, id)
	if err != nil {
		return PollResult{}, fmt.Errorf("gaga adapter poll: %w", err)
	}

	out := PollResult{Progress: result.Progress, Message: result.Error}
	switch result.Status {
	case gaga.StatusQueued:
		out.Status = StatusSubmitted
	case gaga.StatusProcessing:
		out.Status = StatusRunning
	case gaga.StatusSuccess:
		out.Status = StatusSucceeded
		if result.VideoURL != "" {
			out.AssetURLs = []string{result.VideoURL}
		}
	case gaga.StatusCanceled:
		out.Status = StatusCancelled
	case gaga.StatusFailed, gaga.StatusError:
		out.Status = StatusFailed
	default:
		out.Status = StatusFailed
	}
	return out, nil
}

// Balance is not exposed by the Gaga API.
func (a *GagaAdapter) Balance(ctx context.Context) (int64, error) {
	return 0, ErrBalanceUnsupported
}

// Download fetches result asset bytes.
func (a *GagaAdapter) Download(ctx context.Context, url string) ([]byte, error) {
	return a.client.Download(ctx, url)
}

func parseGagaAssetRef(ref string) (int64, error) {
	raw, ok := strings.CutPrefix(ref, gagaAssetPrefix)
	if !ok {
		return 0, fmt.Errorf("reference %q is not a gaga asset", ref)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("reference %q has invalid asset id: %w", ref, err)
	}
	return id, nil
}

// Compile-time check that GagaAdapter implements Provider.
var _ Provider = (*GagaAdapter)(nil)
