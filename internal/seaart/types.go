// Package seaart provides an HTTP client for the SeaArt generation platform.
package seaart

// Status represents the status of a SeaArt task as reported by the
// batch-progress endpoint.
type Status int

// SeaArt task statuses. The platform reports small integer codes.
const (
	StatusWaiting   Status = 1 // Queued, not yet picked up
	StatusRunning   Status = 2 // Generation in progress
	StatusFinished  Status = 3 // Finished, asset URLs available
	StatusCancelled Status = 4 // Cancelled by the platform's content screening
)

// API status codes carried in the response envelope.
const (
	codeOK            = 10000 // Request accepted
	codeContentPolicy = 70026 // Prompt rejected by the content classifier
)

// statusEnvelope is the status object present in every SeaArt response.
type statusEnvelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// submitResponse is the response to any of the task submission endpoints.
type submitResponse struct {
	Status statusEnvelope `json:"status"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// imageOpt references an uploaded image by URL inside a submission payload.
type imageOpt struct {
	Mode string `json:"mode,omitempty"`
	URL  string `json:"url"`
}

// generateVideoMeta is the video section of a submission payload.
type generateVideoMeta struct {
	DurationSec int        `json:"generate_video_duration"`
	ImageOpts   []imageOpt `json:"image_opts,omitempty"`
	NIter       int        `json:"n_iter,omitempty"`
}

// submitMeta is the meta section shared by the submission variants.
type submitMeta struct {
	Prompt         string             `json:"prompt"`
	NegativePrompt string             `json:"negative_prompt"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	NIter          int                `json:"n_iter,omitempty"`
	GenerateVideo  *generateVideoMeta `json:"generate_video,omitempty"`
}

// submitPayload is the request body for the submission endpoints.
type submitPayload struct {
	ModelNo string     `json:"model_no"`
	Meta    submitMeta `json:"meta"`
}

// progressRequest is the request body for the batch-progress endpoint.
type progressRequest struct {
	TaskIDs []string `json:"task_ids"`
}

// progressURI is one result asset reference in a progress item.
type progressURI struct {
	Index    int    `json:"index"`
	URL      string `json:"url"`
	CoverURL string `json:"cover_url"`
}

// progressItem is one task's progress entry.
type progressItem struct {
	TaskID   string        `json:"task_id"`
	Status   Status        `json:"status"`
	Process  int           `json:"process"`
	ImgURIs  []progressURI `json:"img_uris"`
	FailMsg  string        `json:"fail_msg"`
}

// progressResponse is the response from the batch-progress endpoint.
type progressResponse struct {
	Status statusEnvelope `json:"status"`
	Data   struct {
		Items []progressItem `json:"items"`
	} `json:"data"`
}

// presignRequest is the request body for the presigned-upload endpoint.
type presignRequest struct {
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
	FileSize    int    `json:"file_size"`
	Category    int    `json:"category"`
	HashVal     string `json:"hash_val"`
}

// presignResponse carries the presigned PUT URL and file identifier.
type presignResponse struct {
	Status statusEnvelope `json:"status"`
	Data   struct {
		PreSign string `json:"pre_sign"`
		FileID  string `json:"file_id"`
	} `json:"data"`
}

// confirmRequest is the request body confirming a presigned upload.
type confirmRequest struct {
	Category int    `json:"category"`
	FileID   string `json:"file_id"`
}

// confirmResponse carries the final public URL of an uploaded asset.
type confirmResponse struct {
	Status statusEnvelope `json:"status"`
	Data   struct {
		URL string `json:"url"`
	} `json:"data"`
}

// balanceResponse is the response from the account assets endpoint.
type balanceResponse struct {
	Status statusEnvelope `json:"status"`
	Data   struct {
		TempCoins int64 `json:"temp_coins"`
	} `json:"data"`
}

// SubmitTask contains the domain-level parameters for a submission. The
// client builds the vendor wire payload from it.
type SubmitTask struct {
	Prompt      string
	Model       string
	Width       int
	Height      int
	NumOutputs  int
	DurationSec int
	// ImageURLs are uploaded reference asset URLs, in index order.
	ImageURLs []string
}

// ProgressResult contains the result of one progress query.
type ProgressResult struct {
	Status Status
	// Progress is the reported percentage, -1 when absent.
	Progress int
	// AssetURLs is sorted by the vendor-reported index.
	AssetURLs []string
	// FailMsg is set when the platform reports a failure.
	FailMsg string
}
