// Package poller drives a submitted vendor task to a terminal state under a
// wall-clock budget.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xlei/mediagen-api/internal/provider"
	"github.com/xlei/mediagen-api/internal/task"
)

// ErrBudgetExhausted is returned when the task does not reach a terminal
// state before the wall-clock budget runs out.
var ErrBudgetExhausted = errors.New("polling budget exhausted")

// Poller polls a provider task at a fixed interval.
type Poller struct {
	provider provider.Provider
	interval time.Duration
	maxWait  time.Duration
	logger   *slog.Logger
}

// Option configures the Poller.
type Option func(*Poller)

// WithInterval sets the fixed delay between poll attempts.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxWait sets the total wall-clock budget for the poll loop.
func WithMaxWait(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.maxWait = d
		}
	}
}

// New creates a Poller with a 3 second interval and a 5 minute budget
// unless overridden by options.
func New(p provider.Provider, logger *slog.Logger, opts ...Option) *Poller {
	poller := &Poller{
		provider: p,
		interval: 3 * time.Second,
		maxWait:  5 * time.Minute,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(poller)
	}
	return poller
}

// Wait polls until the task reaches a terminal status or the budget runs
// out. Individual poll errors are treated as transient and do not consume
// the attempt beyond its interval slot; the loop keeps going until the
// budget expires. When the budget expires without a terminal status the
// returned state is exhausted and ErrBudgetExhausted is returned so the
// caller can impose a timeout outcome. onProgress, when non-nil, is
// invoked for every successful non-terminal poll.
func (p *Poller) Wait(ctx context.Context, taskID string, onProgress func(provider.PollResult)) (provider.PollResult, task.PollState, error) {
	state := task.PollState{
		Interval: p.interval,
		MaxWait:  p.maxWait,
	}
	deadline := time.Now().Add(p.maxWait)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		state.Attempts++
		result, err := p.provider.Poll(ctx, taskID)
		state.Elapsed = p.maxWait - time.Until(deadline)
		if err != nil {
			p.logger.Warn("poll attempt failed",
				"task_id", taskID,
				"attempt", state.Attempts,
				"error", err)
		} else {
			p.logger.Debug("poll attempt",
				"task_id", taskID,
				"attempt", state.Attempts,
				"status", result.Status,
				"progress", result.Progress)
			if result.Status.IsTerminal() {
				return result, state, nil
			}
			if onProgress != nil {
				onProgress(result)
			}
		}

		if time.Now().After(deadline) {
			state.Elapsed = p.maxWait
			return provider.PollResult{}, state, ErrBudgetExhausted
		}

		select {
		case <-ctx.Done():
			return provider.PollResult{}, state, ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			state.Elapsed = p.maxWait
			return provider.PollResult{}, state, ErrBudgetExhausted
		}
	}
}
