// Package provider defines the common interface for remote generation
// vendors. The SeaArt and Gaga adapters implement this interface; everything
// above it works with the vendor-neutral status model only.
package provider

import (
	"context"
	"errors"
)

// Static errors shared across provider implementations.
var (
	// ErrContentPolicy is returned when the vendor rejects the request
	// content before any generation begins.
	ErrContentPolicy = errors.New("provider: request rejected by content policy")
	// ErrBalanceUnsupported is returned by vendors without a balance endpoint.
	ErrBalanceUnsupported = errors.New("provider: balance query not supported")
)

// Status represents the vendor-neutral status of a generation task.
type Status string

// Common task statuses across vendors.
const (
	StatusSubmitted Status = "SUBMITTED" // Accepted but no poll confirmed activity yet
	StatusRunning   Status = "RUNNING"   // Vendor reports the task as in progress
	StatusSucceeded Status = "SUCCEEDED" // Finished with result asset URLs
	StatusFailed    Status = "FAILED"    // Failed upstream
	StatusCancelled Status = "CANCELLED" // Cancelled by the vendor (content screening)
	StatusTimedOut  Status = "TIMED_OUT" // Imposed locally when the wall-clock budget expires
)

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled, StatusTimedOut:
		return true
	default:
		return false
	}
}

// OutputKind declares what a submission is expected to produce.
type OutputKind string

const (
	// OutputImages requests a batch of images.
	OutputImages OutputKind = "images"
	// OutputVideo requests a single video.
	OutputVideo OutputKind = "video"
)

// SubmitRequest contains the vendor-neutral parameters for submitting a task.
// ReferenceURLs is empty for text-only submissions, holds one URL for
// single-reference flows, and up to four for multi-reference flows.
type SubmitRequest struct {
	Kind          OutputKind
	Prompt        string
	Model         string
	ReferenceURLs []string
	Width         int
	Height        int
	DurationSec   int
}

// PollResult contains the outcome of one status query.
type PollResult struct {
	// Status is the mapped vendor-neutral status.
	Status Status
	// Progress is the reported completion percentage, -1 when unknown.
	Progress int
	// AssetURLs is the index-ordered list of result URLs, set on success.
	AssetURLs []string
	// Message carries the vendor's error text, set on failure.
	Message string
}

// Provider is the boundary to one generation vendor. Implementations must
// classify raw vendor responses here; no untyped payload crosses this
// interface.
type Provider interface {
	// Name identifies the vendor in logs and diagnostics.
	Name() string

	// UploadAsset uploads a local asset and returns its remote URL.
	UploadAsset(ctx context.Context, name string, data []byte) (url string, err error)

	// Submit sends a generation request and returns the vendor task ID.
	// Returns an error wrapping ErrContentPolicy when the vendor rejects
	// the request content at submission time.
	Submit(ctx context.Context, req SubmitRequest) (taskID string, err error)

	// Poll queries the status of a task once. Any vendor status outside the
	// known taxonomy maps to StatusFailed rather than an error.
	Poll(ctx context.Context, taskID string) (PollResult, error)

	// Balance returns the remaining account credit.
	// Returns ErrBalanceUnsupported when the vendor has no such endpoint.
	Balance(ctx context.Context) (int64, error)

	// Download fetches the bytes behind a result asset URL.
	Download(ctx context.Context, url string) ([]byte, error)
}
