package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/ZaphyrRobin/kinetic-takehome/internal/metrics"
	"golang.org/x/time/rate"
)

// Limiter paces successive RPC page calls with a token bucket, replacing
// fixed sleeps between pages. Each backward-pagination walk shares one
// limiter so a long walk cannot hammer the public endpoints.
type Limiter struct {
	limiter  *rate.Limiter
	provider string
}

// NewLimiter creates a rate limiter that allows rps requests per second
// with a burst capacity of burst tokens.
func NewLimiter(rps float64, burst int, provider string) *Limiter {
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		provider: provider,
	}
}

// Wait blocks until the limiter allows one event, or ctx is done.
// Uses Reserve() to guarantee exactly one token is consumed per call.
func (l *Limiter) Wait(ctx context.Context) error {
	r := l.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("rate: cannot reserve token")
	}
	delay := r.Delay()
	if delay > 0 {
		metrics.RateLimitWaits.WithLabelValues(l.provider).Inc()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			r.Cancel()
			return ctx.Err()
		}
	}
	return nil
}
