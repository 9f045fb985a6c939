// Package pace enforces the minimum delay between outbound calls to the
// remote statistics provider. One Pacer is shared per orchestrator run so
// that every fetch kind draws from the same pacing budget; the provider's
// rate limit is undocumented and under-pacing risks throttling that
// poisons the rest of the run.
package pace

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks callers so consecutive remote calls are at least the
// configured interval apart.
type Pacer struct {
	limiter *rate.Limiter
}

// New creates a pacer with the given minimum interval. A non-positive
// interval disables pacing (tests and offline stubs).
func New(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
