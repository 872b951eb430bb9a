package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter spaces successive calls at a fixed interval. The first Wait returns
// immediately; each later Wait blocks until the interval has elapsed since the
// previous one. It does not adapt to server behavior.
type Limiter struct {
	interval time.Duration
	rl       *rate.Limiter
}

// Every creates a limiter allowing one call per interval. A non-positive
// interval disables throttling.
func Every(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{interval: interval, rl: rate.NewLimiter(limit, 1)}
}

// Wait blocks until the next call is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}
	return l.rl.Wait(ctx)
}

// Interval returns the configured spacing.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}
