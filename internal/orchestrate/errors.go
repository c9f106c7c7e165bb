package orchestrate

import "errors"

// Sentinel errors for the failure categories a run can end in. Every error
// returned by a run stage is classified into exactly one category so the
// fallback result can carry a specific diagnostic.
var (
	// ErrUploadFailed wraps a reference asset upload failure.
	ErrUploadFailed = errors.New("reference upload failed")
	// ErrContentPolicy wraps a submission rejected by the vendor's
	// content policy.
	ErrContentPolicy = errors.New("submission rejected by content policy")
	// ErrSubmitFailed wraps any other submission failure.
	ErrSubmitFailed = errors.New("submission failed")
	// ErrCancelled marks a task the vendor cancelled, typically for
	// sensitive content detected during generation.
	ErrCancelled = errors.New("task cancelled by vendor")
	// ErrTimedOut marks a run that exhausted its wall-clock budget.
	ErrTimedOut = errors.New("run timed out")
	// ErrTaskFailed marks a task the vendor reported as failed.
	ErrTaskFailed = errors.New("task failed")
	// ErrCollectFailed wraps an asset download or decode failure after
	// a successful generation.
	ErrCollectFailed = errors.New("asset collection failed")
)

// FailureCode is the machine-readable category recorded on a failed run.
type FailureCode string

const (
	CodeUpload        FailureCode = "UPLOAD_FAILED"
	CodeContentPolicy FailureCode = "CONTENT_POLICY"
	CodeSubmit        FailureCode = "SUBMIT_FAILED"
	CodeCancelled     FailureCode = "CANCELLED"
	CodeTimeout       FailureCode = "TIMED_OUT"
	CodeTaskFailed    FailureCode = "TASK_FAILED"
	CodeCollect       FailureCode = "COLLECT_FAILED"
	CodeInternal      FailureCode = "INTERNAL"
)

// Classify maps a run error to its failure category. Unknown errors fall
// through to CodeInternal.
func Classify(err error) FailureCode {
	switch {
	case errors.Is(err, ErrContentPolicy):
		return CodeContentPolicy
	case errors.Is(err, ErrUploadFailed):
		return CodeUpload
	case errors.Is(err, ErrSubmitFailed):
		return CodeSubmit
	case errors.Is(err, ErrCancelled):
		return CodeCancelled
	case errors.Is(err, ErrTimedOut):
		return CodeTimeout
	case errors.Is(err, ErrTaskFailed):
		return CodeTaskFailed
	case errors.Is(err, ErrCollectFailed):
		return CodeCollect
	default:
		return CodeInternal
	}
}
