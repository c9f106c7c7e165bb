package task

import (
	"context"
	"sync"
)

// Compile-time check that MemoryRepository implements Repository.
var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository is an in-memory implementation of Repository.
// It uses a map with RWMutex for thread-safe access. Task records are
// process-local by design; nothing survives a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewMemoryRepository creates a new in-memory task record repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[string]*Task),
	}
}

// Save persists a task record to the in-memory storage.
// Stores a clone to avoid external mutations.
func (r *MemoryRepository) Save(_ context.Context, t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t.Clone()
	return nil
}

// FindByID retrieves a task record by its run ID.
// Returns a clone to prevent external mutations.
func (r *MemoryRepository) FindByID(_ context.Context, runID string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[runID]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.Clone(), nil
}

// List returns all recorded tasks.
// Returns clones to prevent external mutations.
func (r *MemoryRepository) List(_ context.Context) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		result = append(result, t.Clone())
	}
	return result, nil
}

// Delete removes a task record.
func (r *MemoryRepository) Delete(_ context.Context, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[runID]; !ok {
		return ErrTaskNotFound
	}
	delete(r.tasks, runID)
	return nil
}
