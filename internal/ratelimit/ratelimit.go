// Package ratelimit provides client-side pacing for outbound embedding
// API calls. Remote providers bill per request and enforce quotas, so
// callers throttle themselves instead of burning retries on 429s.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces encode calls against one backend.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing rpm requests per minute with the given
// burst. rpm <= 0 returns nil, which means unlimited.
func New(rpm, burst int) *Limiter {
	if rpm <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst),
	}
}

// Wait blocks until a request is allowed or the context is canceled.
// A nil limiter never blocks.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

// Allow reports whether a request may proceed right now.
func (l *Limiter) Allow() bool {
	if l == nil {
		return true
	}
	return l.limiter.Allow()
}

// AllowN reports whether n requests may proceed at time now.
func (l *Limiter) AllowN(now time.Time, n int) bool {
	if l == nil {
		return true
	}
	return l.limiter.AllowN(now, n)
}
