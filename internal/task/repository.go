package task

import (
	"context"
	"errors"
)

// ErrTaskNotFound is returned when a task record cannot be found by run ID.
var ErrTaskNotFound = errors.New("task not found")

// Repository records finished runs so they can be inspected after the fact.
// Records are advisory: the orchestrator never reads a record back into a
// live invocation.
type Repository interface {
	// Save persists a task record. An existing record with the same run ID
	// is replaced.
	Save(ctx context.Context, t *Task) error

	// FindByID retrieves a task record by its run ID.
	// Returns ErrTaskNotFound if no record exists.
	FindByID(ctx context.Context, runID string) (*Task, error)

	// List returns all recorded tasks.
	List(ctx context.Context) ([]*Task, error)

	// Delete removes a task record.
	// Returns ErrTaskNotFound if no record exists.
	Delete(ctx context.Context, runID string) error
}
