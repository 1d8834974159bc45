package worker

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces calls to the external knowledge source. One limiter is
// shared by every request in a session.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a rate limiter
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request may proceed
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
