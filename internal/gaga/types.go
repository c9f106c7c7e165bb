// Package gaga provides an HTTP client for the Gaga avatar video platform.
package gaga

// Status represents the status string reported by the Gaga generations API.
type Status string

// Gaga generation statuses as reported by the platform.
const (
	StatusQueued     Status = "Queued"
	StatusProcessing Status = "Processing"
	StatusSuccess    Status = "Success"
	StatusFailed     Status = "Failed"
	StatusError      Status = "Error"
	StatusCanceled   Status = "Canceled"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusError, StatusCanceled:
		return true
	default:
		return false
	}
}

// assetResponse is the response from the asset upload endpoint.
type assetResponse struct {
	ID    int64  `json:"id"`
	Error string `json:"error,omitempty"`
}

// GenerationParams is the request body for starting a generation.
type GenerationParams struct {
	AssetID     int64  `json:"assetID,omitempty"`
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

// generationResponse describes a generation, returned by both the start and
// the poll endpoints.
type generationResponse struct {
	ID              int64  `json:"id"`
	Status          Status `json:"status"`
	Progress        int    `json:"progress"`
	ResultVideoURL  string `json:"resultVideoURL,omitempty"`
	ResultPosterURL string `json:"resultPosterURL,omitempty"`
	Error           string `json:"error,omitempty"`
}

// PollResult contains the result of polling a generation's status.
type PollResult struct {
	Status   Status
	Progress int
	// VideoURL is set when Status is StatusSuccess.
	VideoURL string
	// Error is set when the generation failed.
	Error string
}
