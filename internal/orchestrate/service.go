// Package orchestrate runs the generation pipeline end to end: upload
// reference assets, submit the job, poll it to a terminal state and
// collect the outputs. A run always yields a Result; failures produce a
// type-correct placeholder instead of an error surface.
package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xlei/mediagen-api/internal/collector"
	"github.com/xlei/mediagen-api/internal/poller"
	"github.com/xlei/mediagen-api/internal/provider"
	"github.com/xlei/mediagen-api/internal/quota"
	"github.com/xlei/mediagen-api/internal/task"
	"github.com/xlei/mediagen-api/internal/uploader"
)

// Request describes a single generation run.
type Request struct {
	// Kind selects the output media type.
	Kind task.AssetKind
	// Prompt is the generation prompt.
	Prompt string
	// Model is the vendor model identifier, empty for the vendor default.
	Model string
	// Width and Height are the requested output dimensions.
	Width  int
	Height int
	// DurationSec is the clip length for video runs.
	DurationSec int
	// References are local assets to upload before submission.
	References []uploader.Input
}

// Service coordinates the run stages against a single provider.
type Service struct {
	provider  provider.Provider
	uploader  *uploader.Uploader
	poller    *poller.Poller
	collector *collector.Collector
	prober    *quota.Prober
	repo      task.Repository
	logger    *slog.Logger

	placeholderWidth  int
	placeholderHeight int
}

// Option configures the Service.
type Option func(*Service)

// WithPlaceholderSize sets the dimensions of fallback assets.
func WithPlaceholderSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.placeholderWidth = width
			s.placeholderHeight = height
		}
	}
}

// NewService creates an orchestration Service. Placeholder assets default
// to 256x256 unless overridden.
func NewService(
	p provider.Provider,
	up *uploader.Uploader,
	pl *poller.Poller,
	col *collector.Collector,
	pr *quota.Prober,
	repo task.Repository,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		provider:          p,
		uploader:          up,
		poller:            pl,
		collector:         col,
		prober:            pr,
		repo:              repo,
		logger:            logger,
		placeholderWidth:  256,
		placeholderHeight: 256,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRun retrieves a recorded run by ID.
func (s *Service) GetRun(ctx context.Context, runID string) (*task.Task, error) {
	return s.repo.FindByID(ctx, runID)
}

// Generate executes the full pipeline for one request. It always returns
// a non-nil Result: a failed stage short-circuits into a placeholder
// result carrying the failure category and diagnostic text. The returned
// error is non-nil only when even the placeholder could not be built.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	t := task.New(req.Kind)

	s.logger.Info("generation run started",
		slog.String("run_id", t.ID),
		slog.String("provider", s.provider.Name()),
		slog.String("kind", string(req.Kind)),
		slog.Int("references", len(req.References)),
	)

	result, runErr := s.run(ctx, t, req)
	result.Elapsed = time.Since(started)
	result.Status = t.GetStatus()
	result.VendorTaskID = t.VendorTaskID

	var detail, balanceLine string
	if runErr != nil {
		code := Classify(runErr)
		result.FailureCode = code
		result.UsedFallback = true
		detail = failureDetail(code, runErr.Error())

		s.recordFailure(t, code, runErr)
		result.Status = t.GetStatus()

		assets, err := fallbackAssets(req.Kind, s.placeholderWidth, s.placeholderHeight, detail)
		if err != nil {
			return nil, fmt.Errorf("build fallback assets: %w", err)
		}
		result.Assets = assets

		s.logger.Warn("generation run fell back",
			slog.String("run_id", t.ID),
			slog.String("code", string(code)),
			slog.String("error", runErr.Error()),
		)
	} else {
		s.logger.Info("generation run succeeded",
			slog.String("run_id", t.ID),
			slog.Int("assets", len(result.Assets)),
			slog.Duration("elapsed", result.Elapsed),
		)
		// The quota probe is advisory and runs only once the outcome is
		// fixed. An empty line means the probe had nothing to report.
		balanceLine = s.prober.Describe(ctx)
	}
	result.InfoText = buildInfoText(result, s.provider.Name(), detail, balanceLine)

	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.Error("failed to record run",
			slog.String("run_id", t.ID),
			slog.String("error", err.Error()),
		)
	}
	return result, nil
}

// run drives the happy path and returns a categorized error on the first
// failed stage.
func (s *Service) run(ctx context.Context, t *task.Task, req Request) (*Result, error) {
	result := &Result{RunID: t.ID, Kind: req.Kind}

	refs, err := s.uploadReferences(ctx, req.References)
	if err != nil {
		return result, err
	}

	vendorID, err := s.submit(ctx, req, refs)
	if err != nil {
		return result, err
	}
	t.MarkSubmitted(vendorID)
	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.Warn("failed to persist submitted run",
			slog.String("run_id", t.ID),
			slog.String("error", err.Error()),
		)
	}
	// The task stays SUBMITTED until the vendor is first seen working on
	// it; the poller reports that through the progress hook.
	final, state, err := s.poller.Wait(ctx, vendorID, func(res provider.PollResult) {
		if res.Status == provider.StatusRunning && t.GetStatus() == task.StatusSubmitted {
			s.markRunning(ctx, t)
		}
	})
	if err != nil {
		if errors.Is(err, poller.ErrBudgetExhausted) {
			return result, fmt.Errorf("%w after %d attempts over %s",
				ErrTimedOut, state.Attempts, state.MaxWait)
		}
		return result, err
	}

	switch final.Status {
	case provider.StatusSucceeded:
	case provider.StatusCancelled:
		return result, fmt.Errorf("%w: %s", ErrCancelled, final.Message)
	default:
		return result, fmt.Errorf("%w: %s", ErrTaskFailed, final.Message)
	}

	assets, err := s.collector.Collect(ctx, t.ID, req.Kind, final.AssetURLs)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrCollectFailed, err)
	}

	t.SetAssets(assets)
	_ = t.Succeed()
	result.Assets = assets
	return result, nil
}

func (s *Service) uploadReferences(ctx context.Context, refs []uploader.Input) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	urls, err := s.uploader.UploadAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return urls, nil
}

func (s *Service) submit(ctx context.Context, req Request, refs []string) (string, error) {
	kind := provider.OutputVideo
	if req.Kind == task.KindImage {
		kind = provider.OutputImages
	}
	vendorID, err := s.provider.Submit(ctx, provider.SubmitRequest{
		Kind:          kind,
		Prompt:        req.Prompt,
		Model:         req.Model,
		ReferenceURLs: refs,
		Width:         req.Width,
		Height:        req.Height,
		DurationSec:   req.DurationSec,
	})
	if err != nil {
		if errors.Is(err, provider.ErrContentPolicy) {
			return "", fmt.Errorf("%w: %v", ErrContentPolicy, err)
		}
		return "", fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	return vendorID, nil
}

// markRunning transitions the task to RUNNING and persists it so lookups
// observe the state change while polling continues.
func (s *Service) markRunning(ctx context.Context, t *task.Task) {
	if err := t.Start(); err != nil {
		return
	}
	if err := s.repo.Save(ctx, t); err != nil {
		s.logger.Warn("failed to persist running run",
			slog.String("run_id", t.ID),
			slog.String("error", err.Error()),
		)
	}
}

// recordFailure moves the task to the terminal state matching the failure
// category. Transition errors are ignored: a task that already reached a
// terminal state stays there.
func (s *Service) recordFailure(t *task.Task, code FailureCode, runErr error) {
	switch code {
	case CodeCancelled:
		_ = t.Cancel()
	case CodeTimeout:
		_ = t.Timeout()
	default:
		_ = t.Fail(string(code), runErr.Error())
	}
}
