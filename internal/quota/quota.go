// Package quota probes the vendor account balance. Probe results are
// advisory: they feed the run's info text and never change its outcome.
package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/xlei/mediagen-api/internal/provider"
)

const balanceKey = "balance"

// Prober queries the provider balance with a short-lived cache so that
// back-to-back runs do not hammer the vendor endpoint.
type Prober struct {
	provider provider.Provider
	cache    *cache.Cache
	logger   *slog.Logger
}

// New creates a Prober whose results are cached for ttl.
func New(p provider.Provider, ttl time.Duration, logger *slog.Logger) *Prober {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Prober{
		provider: p,
		cache:    cache.New(ttl, 2*ttl),
		logger:   logger,
	}
}

// Balance returns the remaining vendor credit, serving a cached value when
// one is fresh. A probe failure is reported as an error but callers treat
// it as advisory only.
func (p *Prober) Balance(ctx context.Context) (int64, error) {
	if v, ok := p.cache.Get(balanceKey); ok {
		return v.(int64), nil
	}

	balance, err := p.provider.Balance(ctx)
	if err != nil {
		return 0, fmt.Errorf("probe balance: %w", err)
	}
	p.cache.SetDefault(balanceKey, balance)
	return balance, nil
}

// Describe returns a one-line balance summary for the run's info text, or
// an empty string when there is nothing to report. Probe failures are
// logged and otherwise swallowed; vendors without a balance endpoint are
// skipped silently.
func (p *Prober) Describe(ctx context.Context) string {
	balance, err := p.Balance(ctx)
	if err != nil {
		if !errors.Is(err, provider.ErrBalanceUnsupported) {
			p.logger.Warn("balance probe failed", "error", err)
		}
		return ""
	}
	return fmt.Sprintf("Balance: %d credits", balance)
}

// Invalidate drops the cached balance so the next probe hits the vendor.
func (p *Prober) Invalidate() {
	p.cache.Delete(balanceKey)
}
