package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/xlei/mediagen-api/internal/collector"
	"github.com/xlei/mediagen-api/internal/media"
	"github.com/xlei/mediagen-api/internal/poller"
	"github.com/xlei/mediagen-api/internal/provider"
	"github.com/xlei/mediagen-api/internal/quota"
	"github.com/xlei/mediagen-api/internal/task"
	"github.com/xlei/mediagen-api/internal/uploader"
)

// fakeProvider drives the whole pipeline with scripted behavior.
type fakeProvider struct {
	uploadErr  error
	submitErr  error
	submitID   string
	pollScript []provider.PollResult
	pollErr    error
	balance    int64
	balanceErr error
	blobs      map[string][]byte
	onPoll     func(attempt int)

	uploads  int
	submits  int
	polls    int
	balances int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) UploadAsset(_ context.Context, name string, _ []byte) (string, error) {
	f.uploads++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "https://cdn/" + name, nil
}

func (f *fakeProvider) Submit(context.Context, provider.SubmitRequest) (string, error) {
	f.submits++
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitID, nil
}

func (f *fakeProvider) Poll(context.Context, string) (provider.PollResult, error) {
	i := f.polls
	f.polls++
	if f.onPoll != nil {
		f.onPoll(i)
	}
	if f.pollErr != nil {
		return provider.PollResult{}, f.pollErr
	}
	if i >= len(f.pollScript) {
		i = len(f.pollScript) - 1
	}
	return f.pollScript[i], nil
}

func (f *fakeProvider) Balance(context.Context) (int64, error) {
	f.balances++
	if f.balanceErr != nil {
		return 0, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeProvider) Download(_ context.Context, url string) ([]byte, error) {
	data, ok := f.blobs[url]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestService(t *testing.T, fp *fakeProvider) (*Service, *task.MemoryRepository) {
	t.Helper()
	logger := testLogger()
	repo := task.NewMemoryRepository()
	svc := NewService(
		fp,
		uploader.New(fp, logger),
		poller.New(fp, logger,
			poller.WithInterval(2*time.Millisecond),
			poller.WithMaxWait(200*time.Millisecond),
		),
		collector.New(fp, logger),
		quota.New(fp, time.Minute, logger),
		repo,
		logger,
		WithPlaceholderSize(64, 64),
	)
	return svc, repo
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	data, err := media.EncodePNG(media.BlankImage(8, 8))
	if err != nil {
		t.Fatalf("building test png: %v", err)
	}
	return data
}

func TestGenerate_Success(t *testing.T) {
	png := pngBytes(t)
	fp := &fakeProvider{
		submitID: "vendor-1",
		balance:  900,
		pollScript: []provider.PollResult{
			{Status: provider.StatusRunning, Progress: 50},
			{Status: provider.StatusSucceeded, AssetURLs: []string{"https://cdn/0.png", "https://cdn/1.png"}},
		},
		blobs: map[string][]byte{
			"https://cdn/0.png": png,
			"https://cdn/1.png": png,
		},
	}
	svc, repo := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindImage,
		Prompt: "a fox",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.UsedFallback {
		t.Error("expected real assets, got fallback")
	}
	if result.Status != task.StatusSucceeded {
		t.Errorf("expected SUCCEEDED, got %s", result.Status)
	}
	if len(result.Assets) != 2 {
		t.Errorf("expected 2 assets, got %d", len(result.Assets))
	}
	if result.VendorTaskID != "vendor-1" {
		t.Errorf("expected vendor task ID vendor-1, got %s", result.VendorTaskID)
	}
	if !strings.Contains(result.InfoText, "Balance: 900 credits") {
		t.Errorf("expected balance line in info text, got %q", result.InfoText)
	}

	// The run must be recorded.
	rec, err := repo.FindByID(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("expected recorded run: %v", err)
	}
	if rec.Status != task.StatusSucceeded {
		t.Errorf("expected recorded status SUCCEEDED, got %s", rec.Status)
	}
}

func TestGenerate_RunsAfterFirstActivePoll(t *testing.T) {
	png := pngBytes(t)
	fp := &fakeProvider{
		submitID: "vendor-1",
		pollScript: []provider.PollResult{
			{Status: provider.StatusSubmitted},
			{Status: provider.StatusRunning, Progress: 40},
			{Status: provider.StatusSucceeded, AssetURLs: []string{"https://cdn/0.png"}},
		},
		blobs: map[string][]byte{"https://cdn/0.png": png},
	}
	svc, repo := newTestService(t, fp)

	// Record the persisted status at the start of each poll attempt.
	var observed []task.Status
	fp.onPoll = func(int) {
		tasks, err := repo.List(context.Background())
		if err != nil || len(tasks) != 1 {
			t.Errorf("expected one recorded run during polling, got %d (%v)", len(tasks), err)
			return
		}
		observed = append(observed, tasks[0].Status)
	}

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindImage,
		Prompt: "p",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != task.StatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", result.Status)
	}

	// The run stays SUBMITTED through the queued poll and the poll that
	// first reports activity, and is RUNNING from the next attempt on.
	want := []task.Status{task.StatusSubmitted, task.StatusSubmitted, task.StatusRunning}
	if len(observed) != len(want) {
		t.Fatalf("expected %d observations, got %d", len(want), len(observed))
	}
	for i, status := range want {
		if observed[i] != status {
			t.Errorf("poll %d: expected recorded status %s, got %s", i, status, observed[i])
		}
	}
}

func TestGenerate_ContentPolicySkipsPolling(t *testing.T) {
	fp := &fakeProvider{
		submitErr: fmt.Errorf("%w: flagged", provider.ErrContentPolicy),
	}
	svc, _ := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindImage,
		Prompt: "forbidden subject",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.UsedFallback {
		t.Fatal("expected fallback result")
	}
	if result.FailureCode != CodeContentPolicy {
		t.Errorf("expected CONTENT_POLICY, got %s", result.FailureCode)
	}
	if fp.polls != 0 {
		t.Errorf("expected no polls after content policy rejection, got %d", fp.polls)
	}
	if result.Status != task.StatusFailed {
		t.Errorf("expected FAILED, got %s", result.Status)
	}
}

func TestGenerate_UploadFailureSkipsSubmit(t *testing.T) {
	fp := &fakeProvider{uploadErr: errors.New("storage rejected")}
	svc, _ := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:       task.KindImage,
		Prompt:     "p",
		References: []uploader.Input{{Name: "a.png", Data: []byte{1}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FailureCode != CodeUpload {
		t.Errorf("expected UPLOAD_FAILED, got %s", result.FailureCode)
	}
	if fp.submits != 0 {
		t.Errorf("expected no submission after upload failure, got %d", fp.submits)
	}
}

func TestGenerate_Timeout(t *testing.T) {
	fp := &fakeProvider{
		submitID:   "vendor-1",
		pollScript: []provider.PollResult{{Status: provider.StatusRunning}},
	}
	svc, repo := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindVideo,
		Prompt: "p",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FailureCode != CodeTimeout {
		t.Errorf("expected TIMED_OUT code, got %s", result.FailureCode)
	}
	if result.Status != task.StatusTimedOut {
		t.Errorf("expected TIMED_OUT status, got %s", result.Status)
	}
	if fp.polls == 0 {
		t.Error("expected polling to happen before timing out")
	}

	rec, err := repo.FindByID(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("expected recorded run: %v", err)
	}
	if rec.Status != task.StatusTimedOut {
		t.Errorf("expected recorded status TIMED_OUT, got %s", rec.Status)
	}
}

func TestGenerate_VendorCancellation(t *testing.T) {
	fp := &fakeProvider{
		submitID: "vendor-1",
		pollScript: []provider.PollResult{
			{Status: provider.StatusCancelled, Message: "sensitive content"},
		},
	}
	svc, _ := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindImage,
		Prompt: "p",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FailureCode != CodeCancelled {
		t.Errorf("expected CANCELLED, got %s", result.FailureCode)
	}
	if result.Status != task.StatusCancelled {
		t.Errorf("expected CANCELLED status, got %s", result.Status)
	}
	if !strings.Contains(result.InfoText, "sensitive content") {
		t.Errorf("expected vendor message in info text, got %q", result.InfoText)
	}
}

func TestGenerate_CollectionFailure(t *testing.T) {
	fp := &fakeProvider{
		submitID: "vendor-1",
		pollScript: []provider.PollResult{
			{Status: provider.StatusSucceeded, AssetURLs: []string{"https://cdn/missing.png"}},
		},
		blobs: map[string][]byte{},
	}
	svc, _ := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindImage,
		Prompt: "p",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FailureCode != CodeCollect {
		t.Errorf("expected COLLECT_FAILED, got %s", result.FailureCode)
	}
	if !result.UsedFallback {
		t.Error("expected fallback result")
	}
}

func TestGenerate_FallbackIsTypeCorrect(t *testing.T) {
	tests := []struct {
		name string
		kind task.AssetKind
	}{
		{"image fallback", task.KindImage},
		{"video fallback", task.KindVideo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakeProvider{submitErr: errors.New("vendor down")}
			svc, _ := newTestService(t, fp)

			result, err := svc.Generate(context.Background(), Request{
				Kind:   tt.kind,
				Prompt: "p",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(result.Assets) != 1 {
				t.Fatalf("expected exactly 1 placeholder asset, got %d", len(result.Assets))
			}
			asset := result.Assets[0]
			if asset.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, asset.Kind)
			}
			if len(asset.Bytes) == 0 {
				t.Error("expected placeholder to carry bytes")
			}
			switch tt.kind {
			case task.KindImage:
				if _, err := media.DecodeImage(asset.Bytes); err != nil {
					t.Errorf("expected decodable placeholder image: %v", err)
				}
			case task.KindVideo:
				if len(asset.Bytes) < 8 || string(asset.Bytes[4:8]) != "ftyp" {
					t.Errorf("expected MP4 placeholder payload, got %q", asset.Bytes[:min(8, len(asset.Bytes))])
				}
			}
		})
	}
}

func TestGenerate_QuotaFailureDoesNotAffectOutcome(t *testing.T) {
	png := pngBytes(t)
	fp := &fakeProvider{
		submitID:   "vendor-1",
		balanceErr: errors.New("payment service down"),
		pollScript: []provider.PollResult{
			{Status: provider.StatusSucceeded, AssetURLs: []string{"https://cdn/0.png"}},
		},
		blobs: map[string][]byte{"https://cdn/0.png": png},
	}
	svc, _ := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindImage,
		Prompt: "p",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.UsedFallback {
		t.Error("expected quota failure to not force a fallback")
	}
	if result.Status != task.StatusSucceeded {
		t.Errorf("expected SUCCEEDED despite quota failure, got %s", result.Status)
	}
	if strings.Contains(result.InfoText, "Balance") {
		t.Errorf("expected no balance line after probe failure, got %q", result.InfoText)
	}
}

func TestGenerate_FailedRunSkipsQuotaProbe(t *testing.T) {
	fp := &fakeProvider{
		balance:   900,
		submitErr: errors.New("vendor down"),
	}
	svc, _ := newTestService(t, fp)

	result, err := svc.Generate(context.Background(), Request{
		Kind:   task.KindImage,
		Prompt: "p",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.UsedFallback {
		t.Fatal("expected fallback result")
	}
	if fp.balances != 0 {
		t.Errorf("expected no balance probe on a failed run, got %d", fp.balances)
	}
	if strings.Contains(result.InfoText, "Balance") {
		t.Errorf("expected no balance line on a failed run, got %q", result.InfoText)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want FailureCode
	}{
		{fmt.Errorf("%w: x", ErrContentPolicy), CodeContentPolicy},
		{fmt.Errorf("%w: x", ErrUploadFailed), CodeUpload},
		{fmt.Errorf("%w: x", ErrSubmitFailed), CodeSubmit},
		{fmt.Errorf("%w: x", ErrCancelled), CodeCancelled},
		{fmt.Errorf("%w: x", ErrTimedOut), CodeTimeout},
		{fmt.Errorf("%w: x", ErrTaskFailed), CodeTaskFailed},
		{fmt.Errorf("%w: x", ErrCollectFailed), CodeCollect},
		{errors.New("who knows"), CodeInternal},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
