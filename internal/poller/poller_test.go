package poller

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xlei/mediagen-api/internal/provider"
)

// step is one scripted poll response.
type step struct {
	result provider.PollResult
	err    error
}

// scriptedProvider replays a fixed sequence of poll responses. The last
// step repeats once the script runs out.
type scriptedProvider struct {
	steps []step
	calls int
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) UploadAsset(context.Context, string, []byte) (string, error) {
	return "", errors.New("not implemented")
}

func (s *scriptedProvider) Submit(context.Context, provider.SubmitRequest) (string, error) {
	return "", errors.New("not implemented")
}

func (s *scriptedProvider) Poll(context.Context, string) (provider.PollResult, error) {
	i := s.calls
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.calls++
	return s.steps[i].result, s.steps[i].err
}

func (s *scriptedProvider) Balance(context.Context) (int64, error) { return 0, nil }

func (s *scriptedProvider) Download(context.Context, string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWait_ReachesTerminal(t *testing.T) {
	sp := &scriptedProvider{steps: []step{
		{result: provider.PollResult{Status: provider.StatusSubmitted}},
		{result: provider.PollResult{Status: provider.StatusRunning, Progress: 50}},
		{result: provider.PollResult{Status: provider.StatusSucceeded, AssetURLs: []string{"https://cdn/a.png"}}},
	}}
	p := New(sp, testLogger(),
		WithInterval(2*time.Millisecond),
		WithMaxWait(time.Second),
	)

	result, state, err := p.Wait(context.Background(), "t1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != provider.StatusSucceeded {
		t.Errorf("expected succeeded, got %s", result.Status)
	}
	if state.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", state.Attempts)
	}
	if len(result.AssetURLs) != 1 {
		t.Errorf("expected 1 asset url, got %d", len(result.AssetURLs))
	}
}

func TestWait_ReportsProgress(t *testing.T) {
	sp := &scriptedProvider{steps: []step{
		{result: provider.PollResult{Status: provider.StatusSubmitted}},
		{err: errors.New("temporary network failure")},
		{result: provider.PollResult{Status: provider.StatusRunning, Progress: 30}},
		{result: provider.PollResult{Status: provider.StatusSucceeded}},
	}}
	p := New(sp, testLogger(),
		WithInterval(2*time.Millisecond),
		WithMaxWait(time.Second),
	)

	var seen []provider.Status
	_, _, err := p.Wait(context.Background(), "t1", func(res provider.PollResult) {
		seen = append(seen, res.Status)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The hook fires for successful non-terminal polls only: not for the
	// failed attempt and not for the terminal one.
	want := []provider.Status{provider.StatusSubmitted, provider.StatusRunning}
	if len(seen) != len(want) {
		t.Fatalf("expected %d progress reports, got %d", len(want), len(seen))
	}
	for i, status := range want {
		if seen[i] != status {
			t.Errorf("progress report %d: expected %s, got %s", i, status, seen[i])
		}
	}
}

func TestWait_SkipsTransientErrors(t *testing.T) {
	sp := &scriptedProvider{steps: []step{
		{err: errors.New("temporary network failure")},
		{err: errors.New("another hiccup")},
		{result: provider.PollResult{Status: provider.StatusSucceeded}},
	}}
	p := New(sp, testLogger(),
		WithInterval(2*time.Millisecond),
		WithMaxWait(time.Second),
	)

	result, state, err := p.Wait(context.Background(), "t1", nil)
	if err != nil {
		t.Fatalf("expected transient errors to be skipped, got %v", err)
	}
	if result.Status != provider.StatusSucceeded {
		t.Errorf("expected succeeded, got %s", result.Status)
	}
	if state.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", state.Attempts)
	}
}

func TestWait_BudgetExhausted(t *testing.T) {
	sp := &scriptedProvider{steps: []step{
		{result: provider.PollResult{Status: provider.StatusRunning}},
	}}
	p := New(sp, testLogger(),
		WithInterval(5*time.Millisecond),
		WithMaxWait(25*time.Millisecond),
	)

	_, state, err := p.Wait(context.Background(), "t1", nil)
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if !state.Exhausted() {
		t.Error("expected poll state to report exhaustion")
	}
	if state.Attempts == 0 {
		t.Error("expected at least one attempt before exhaustion")
	}
}

func TestWait_ContextCancelled(t *testing.T) {
	sp := &scriptedProvider{steps: []step{
		{result: provider.PollResult{Status: provider.StatusRunning}},
	}}
	p := New(sp, testLogger(),
		WithInterval(50*time.Millisecond),
		WithMaxWait(time.Minute),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.Wait(ctx, "t1", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
