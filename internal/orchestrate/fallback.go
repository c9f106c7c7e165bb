package orchestrate

import (
	"github.com/xlei/mediagen-api/internal/media"
	"github.com/xlei/mediagen-api/internal/task"
)

// failureDetail returns the human-readable explanation attached to a
// fallback result for each failure category.
func failureDetail(code FailureCode, msg string) string {
	var detail string
	switch code {
	case CodeContentPolicy:
		detail = "The prompt was rejected by the provider's content policy."
	case CodeUpload:
		detail = "A reference asset could not be uploaded."
	case CodeSubmit:
		detail = "The generation request was not accepted."
	case CodeCancelled:
		detail = "The provider cancelled the task, usually because the output was flagged as sensitive."
	case CodeTimeout:
		detail = "The task did not finish within the configured wait budget."
	case CodeTaskFailed:
		detail = "The provider reported the task as failed."
	case CodeCollect:
		detail = "The generated assets could not be downloaded."
	default:
		detail = "An internal error interrupted the run."
	}
	if msg != "" {
		detail += " (" + msg + ")"
	}
	return detail
}

// fallbackAssets builds type-correct placeholder output for a failed run.
// Image runs get a captioned blank frame; video runs get an empty MP4
// stub. The slice always contains exactly one asset so the result is
// never empty.
func fallbackAssets(kind task.AssetKind, width, height int, caption string) ([]task.Asset, error) {
	if kind == task.KindVideo {
		return []task.Asset{{Index: 0, Kind: task.KindVideo, Bytes: media.PlaceholderVideo()}}, nil
	}

	data, err := media.EncodePNG(media.PlaceholderImage(width, height, caption))
	if err != nil {
		return nil, err
	}
	return []task.Asset{{Index: 0, Kind: task.KindImage, Bytes: data}}, nil
}
