package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterSpacesRequests(t *testing.T) {
	delay := 50 * time.Millisecond
	limiter := NewRateLimiter(delay)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	require.NoError(t, limiter.Wait(ctx))
	elapsed := time.Since(start)

	// The second request must wait out the interval.
	assert.GreaterOrEqual(t, elapsed, delay/2)
}

func TestRateLimiterDefaultDelay(t *testing.T) {
	limiter := NewRateLimiter(0)
	assert.NotNil(t, limiter)

	// The first request goes through immediately.
	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRateLimiterRespectsContextCancellation(t *testing.T) {
	limiter := NewRateLimiter(time.Minute)
	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, limiter.Wait(cancelled))
}

func TestRateLimiterBackoffAfterRateLimitError(t *testing.T) {
	limiter := NewRateLimiter(time.Millisecond)
	limiter.RecordRateLimitError(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// The backoff window outlasts the context, so Wait must give up.
	err := limiter.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
