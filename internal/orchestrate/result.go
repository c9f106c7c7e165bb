package orchestrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/xlei/mediagen-api/internal/task"
)

// Result is the outcome of a generation run. It is total: every run
// produces a Result, with UsedFallback set when the assets are
// placeholders rather than vendor output.
type Result struct {
	// RunID identifies the run.
	RunID string
	// Kind is the media type of the produced assets.
	Kind task.AssetKind
	// Status is the run's terminal status.
	Status task.Status
	// Assets holds the collected (or placeholder) outputs in index order.
	// It is never empty.
	Assets []task.Asset
	// InfoText is a human-readable summary of the run.
	InfoText string
	// UsedFallback reports whether Assets are placeholders.
	UsedFallback bool
	// FailureCode is set when the run did not succeed.
	FailureCode FailureCode
	// VendorTaskID is the vendor-side identifier, when submission got
	// that far.
	VendorTaskID string
	// Elapsed is the total wall-clock duration of the run.
	Elapsed time.Duration
}

// buildInfoText assembles the run summary. The balance line comes last so
// that quota probe output never displaces the outcome description.
func buildInfoText(r *Result, provider, detail, balanceLine string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s via %s: %s", r.RunID, provider, r.Status)
	if r.VendorTaskID != "" {
		fmt.Fprintf(&b, "\nVendor task: %s", r.VendorTaskID)
	}
	if detail != "" {
		fmt.Fprintf(&b, "\n%s", detail)
	}
	if !r.UsedFallback {
		fmt.Fprintf(&b, "\nAssets: %d %s(s) in %s", len(r.Assets), r.Kind, r.Elapsed.Round(time.Millisecond))
		for _, a := range r.Assets {
			if a.RemoteURL != "" {
				fmt.Fprintf(&b, "\n  [%d] %s", a.Index, a.RemoteURL)
			}
		}
	}
	if balanceLine != "" {
		fmt.Fprintf(&b, "\n%s", balanceLine)
	}
	return b.String()
}
