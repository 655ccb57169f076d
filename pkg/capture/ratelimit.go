package capture

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles frame captures to at most one per MinCaptureInterval.
// No burst credit accumulates: the host capture API enforces a hard
// rejection above its call-rate threshold, so calls must never bunch up
// even after a long quiet stretch.
type Pacer struct {
	lim *rate.Limiter
}

// NewPacer creates a pacer for the given minimum interval. A
// non-positive interval disables pacing.
func NewPacer(minInterval time.Duration) *Pacer {
	if minInterval <= 0 {
		return &Pacer{}
	}
	return &Pacer{lim: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the next capture may be issued. It only delays;
// the sole error condition is context cancellation.
func (p *Pacer) Wait(ctx context.Context) error {
	if p.lim == nil {
		return ctx.Err()
	}
	return p.lim.Wait(ctx)
}
