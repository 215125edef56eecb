package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultAPIDelay is the minimum spacing between Drive/Sheets calls.
// The Sheets API allows 60 read requests per minute per user; 1.5s
// leaves a safe margin.
const DefaultAPIDelay = 1500 * time.Millisecond

// RateLimiter enforces a minimum interval between API requests. Every
// external call waits on it, success or failure, so consecutive calls
// never occur faster than the configured delay. A 429 response can
// additionally impose a backoff period.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter spacing requests at least delay apart.
// A non-positive delay falls back to DefaultAPIDelay.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	if delay <= 0 {
		delay = DefaultAPIDelay
	}
	return &RateLimiter{
		// Burst of 1: strictly one request per interval.
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Wait blocks until a request can be made without exceeding the rate
// limit. It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError records a 429 response and sets a backoff period.
func (r *RateLimiter) RecordRateLimitError(retryAfterSeconds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if retryAfterSeconds <= 0 {
		retryAfterSeconds = 60
	}
	r.retryAt = time.Now().Add(time.Duration(retryAfterSeconds) * time.Second)
}
