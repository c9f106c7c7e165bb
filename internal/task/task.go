// Package task provides the Task aggregate for a single remote generation
// run. It includes the status state machine, the ordered asset list, and
// repository interfaces for recording finished runs.
package task

import (
	"errors"
	"sync"
	"time"

	"github.com/xlei/mediagen-api/internal/task/id"
)

// Status represents the current state of a Task.
type Status string

const (
	// StatusSubmitted indicates the task was accepted by the vendor but no
	// poll has confirmed activity yet.
	StatusSubmitted Status = "SUBMITTED"
	// StatusRunning indicates the vendor reported the task as in progress.
	StatusRunning Status = "RUNNING"
	// StatusSucceeded indicates the task finished and produced assets.
	StatusSucceeded Status = "SUCCEEDED"
	// StatusFailed indicates the task failed upstream or its result was unusable.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the vendor cancelled the task, typically a
	// content-policy cancellation.
	StatusCancelled Status = "CANCELLED"
	// StatusTimedOut indicates the wall-clock budget expired before the
	// vendor reported a terminal state.
	StatusTimedOut Status = "TIMED_OUT"
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

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// Terminal states have no outgoing transitions.
var validTransitions = map[Status][]Status{
	StatusSubmitted: {StatusRunning, StatusSucceeded, StatusFailed, StatusCancelled, StatusTimedOut},
	StatusRunning:   {StatusSucceeded, StatusFailed, StatusCancelled, StatusTimedOut},
	StatusSucceeded: {},
	StatusFailed:    {},
	StatusCancelled: {},
	StatusTimedOut:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// AssetKind distinguishes the media type of a produced asset.
type AssetKind string

const (
	// KindImage marks an image asset.
	KindImage AssetKind = "image"
	// KindVideo marks a video asset.
	KindVideo AssetKind = "video"
)

// Asset is one produced (or reference) media item. Index defines ordering;
// downstream payloads reference assets positionally.
type Asset struct {
	// Index is the 0-based position of the asset in the result sequence.
	Index int
	// Kind is the media type.
	Kind AssetKind
	// SourceRef is a local identifier for the asset before upload.
	SourceRef string
	// RemoteURL is set after upload, or when the vendor reports result URLs.
	RemoteURL string
	// Bytes holds the downloaded payload once collected.
	Bytes []byte
}

// ErrorInfo describes why a task ended in a non-success terminal state.
type ErrorInfo struct {
	// Code is the stable failure category.
	Code string
	// Message is the human-readable diagnostic.
	Message string
}

// PollState tracks the progress of the polling loop for a task.
// Elapsed is monotonically non-decreasing across polls.
type PollState struct {
	// Attempts is the number of status queries issued so far.
	Attempts int
	// Elapsed is the wall-clock time spent polling.
	Elapsed time.Duration
	// Interval is the fixed wait between consecutive queries.
	Interval time.Duration
	// MaxWait is the overall wall-clock budget.
	MaxWait time.Duration
}

// Exhausted reports whether the wall-clock budget is spent.
func (p PollState) Exhausted() bool {
	return p.Elapsed >= p.MaxWait
}

// Task represents a single submitted remote generation job and its evolving
// status. A Task is owned exclusively by one orchestrator invocation and is
// discarded once the result is produced.
type Task struct {
	mu sync.RWMutex

	// ID is the local run identifier.
	ID string
	// VendorTaskID is the identifier the vendor returned at submission.
	VendorTaskID string
	// Kind is the declared output kind for the run.
	Kind AssetKind
	// Status is the current task state.
	Status Status
	// Assets is the index-ordered list of produced assets.
	Assets []Asset
	// ErrorInfo is set when the task ends in a non-success terminal state.
	ErrorInfo *ErrorInfo
	// SubmittedAt is when the vendor accepted the task.
	SubmittedAt time.Time
	// CreatedAt is when the run started.
	CreatedAt time.Time
	// UpdatedAt is when the task was last updated.
	UpdatedAt time.Time
	// CompletedAt is when the task reached a terminal state.
	CompletedAt time.Time
}

// New creates a new Task with a generated run ID in SUBMITTED status.
func New(kind AssetKind) *Task {
	now := time.Now()
	return &Task{
		ID:        id.Generate(),
		Kind:      kind,
		Status:    StatusSubmitted,
		Assets:    make([]Asset, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewWithID creates a new Task with the specified run ID.
// Useful for testing or when the ID needs to be externally generated.
func NewWithID(runID string, kind AssetKind) *Task {
	now := time.Now()
	return &Task{
		ID:        runID,
		Kind:      kind,
		Status:    StatusSubmitted,
		Assets:    make([]Asset, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the task status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed; terminal
// states are never re-entered or changed.
func (t *Task) TransitionTo(status Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !canTransition(t.Status, status) {
		return ErrInvalidTransition
	}

	t.Status = status
	t.UpdatedAt = time.Now()

	if status.IsTerminal() {
		t.CompletedAt = t.UpdatedAt
	}

	return nil
}

// MarkSubmitted records the vendor task identifier and submission time.
func (t *Task) MarkSubmitted(vendorTaskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.VendorTaskID = vendorTaskID
	t.SubmittedAt = time.Now()
	t.UpdatedAt = t.SubmittedAt
}

// Start transitions the task from SUBMITTED to RUNNING.
func (t *Task) Start() error {
	return t.TransitionTo(StatusRunning)
}

// Succeed transitions the task to SUCCEEDED.
func (t *Task) Succeed() error {
	return t.TransitionTo(StatusSucceeded)
}

// Fail transitions the task to FAILED with a failure category and message.
func (t *Task) Fail(code, msg string) error {
	t.mu.Lock()
	t.ErrorInfo = &ErrorInfo{Code: code, Message: msg}
	t.mu.Unlock()
	return t.TransitionTo(StatusFailed)
}

// Cancel transitions the task to CANCELLED.
func (t *Task) Cancel() error {
	return t.TransitionTo(StatusCancelled)
}

// Timeout transitions the task to TIMED_OUT.
func (t *Task) Timeout() error {
	return t.TransitionTo(StatusTimedOut)
}

// GetStatus returns the current task status (thread-safe).
func (t *Task) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// SetAssets replaces the asset list. Only the result collector mutates
// assets; the list must already be index-ordered.
func (t *Task) SetAssets(assets []Asset) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Assets = assets
	t.UpdatedAt = time.Now()
}

// IsTerminal returns true if the task is in a terminal state.
func (t *Task) IsTerminal() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status.IsTerminal()
}

// Clone creates a deep copy of the task for safe reads.
func (t *Task) Clone() *Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	assets := make([]Asset, len(t.Assets))
	copy(assets, t.Assets)

	var errInfo *ErrorInfo
	if t.ErrorInfo != nil {
		e := *t.ErrorInfo
		errInfo = &e
	}

	return &Task{
		ID:           t.ID,
		VendorTaskID: t.VendorTaskID,
		Kind:         t.Kind,
		Status:       t.Status,
		Assets:       assets,
		ErrorInfo:    errInfo,
		SubmittedAt:  t.SubmittedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		CompletedAt:  t.CompletedAt,
	}
}
