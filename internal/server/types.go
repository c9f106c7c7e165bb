// Package server provides the HTTP surface for the media generation API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// ReferenceAsset is a local asset included with a generation request.
type ReferenceAsset struct {
	// Name is the original filename, used as an upload hint.
	Name string `json:"name" validate:"required,max=255"`
	// DataBase64 is the base64-encoded asset content.
	DataBase64 string `json:"data_base64" validate:"required,base64"`
}

// GenerateRequest is the HTTP request body for running a generation.
type GenerateRequest struct {
	// Kind selects the output media type.
	Kind string `json:"kind" validate:"required,oneof=image video"`
	// Prompt is the generation prompt.
	Prompt string `json:"prompt" validate:"required,max=4000"`
	// Model is the vendor model identifier. Empty selects the default.
	Model string `json:"model,omitempty" validate:"max=128"`
	// Width and Height are the requested output dimensions.
	Width  int `json:"width,omitempty" validate:"omitempty,min=64,max=4096"`
	Height int `json:"height,omitempty" validate:"omitempty,min=64,max=4096"`
	// DurationSec is the clip length for video generations.
	DurationSec int `json:"duration_sec,omitempty" validate:"omitempty,min=1,max=60"`
	// References are local assets to upload before submission.
	References []ReferenceAsset `json:"references,omitempty" validate:"max=8,dive"`
}

// AssetResponse is a single produced asset.
type AssetResponse struct {
	// Index is the asset's position in the result.
	Index int `json:"index"`
	// Kind is the asset media type.
	Kind string `json:"kind"`
	// RemoteURL is the vendor URL the asset was downloaded from.
	RemoteURL string `json:"remote_url,omitempty"`
	// ArchiveRef points to the archived copy when archival is enabled.
	ArchiveRef string `json:"archive_ref,omitempty"`
	// DataBase64 is the base64-encoded asset content.
	DataBase64 string `json:"data_base64"`
}

// GenerateResponse is the HTTP response for a completed generation run.
type GenerateResponse struct {
	// RunID is the unique identifier for the run.
	RunID string `json:"run_id"`
	// Status is the run's terminal status.
	Status string `json:"status"`
	// Kind is the output media type.
	Kind string `json:"kind"`
	// UsedFallback reports whether the assets are placeholders.
	UsedFallback bool `json:"used_fallback"`
	// FailureCode is the failure category when the run did not succeed.
	FailureCode string `json:"failure_code,omitempty"`
	// InfoText is a human-readable summary of the run.
	InfoText string `json:"info_text"`
	// Assets holds the produced assets in index order.
	Assets []AssetResponse `json:"assets"`
}

// RunResponse is the HTTP response for reading a recorded run.
type RunResponse struct {
	// RunID is the unique identifier for the run.
	RunID string `json:"run_id"`
	// VendorTaskID is the vendor-side identifier, when submission succeeded.
	VendorTaskID string `json:"vendor_task_id,omitempty"`
	// Status is the run's current status.
	Status string `json:"status"`
	// Kind is the output media type.
	Kind string `json:"kind"`
	// AssetCount is the number of assets the run produced.
	AssetCount int `json:"asset_count"`
	// ErrorCode and ErrorMessage describe a non-success terminal state.
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// QuotaResponse is the HTTP response for the balance probe.
type QuotaResponse struct {
	// Balance is the remaining vendor credit.
	Balance int64 `json:"balance"`
	// Note carries a diagnostic when the balance is unavailable.
	Note string `json:"note,omitempty"`
}

// ReloadResponse is the HTTP response after a configuration reload.
type ReloadResponse struct {
	// Status reports whether the reload was applied.
	Status string `json:"status"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
