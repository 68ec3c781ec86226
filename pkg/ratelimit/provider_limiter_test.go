package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRateLimiter_WaitForSource(t *testing.T) {
	limiter := NewProviderRateLimiter()
	ctx := context.Background()

	tests := []struct {
		name            string
		source          string
		expectedMinWait time.Duration
		shouldError     bool
	}{
		{
			name:            "openai rate limit",
			source:          "openai",
			expectedMinWait: 500 * time.Millisecond,
			shouldError:     false,
		},
		{
			name:            "huggingface rate limit",
			source:          "huggingface",
			expectedMinWait: 1 * time.Second,
			shouldError:     false,
		},
		{
			name:        "unknown source",
			source:      "unknown",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			err := limiter.WaitForSource(ctx, tt.source)
			elapsed := time.Since(start)

			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				// First request should be immediate
				assert.Less(t, elapsed, 100*time.Millisecond)

				// Second request should wait
				start = time.Now()
				err = limiter.WaitForSource(ctx, tt.source)
				elapsed = time.Since(start)

				assert.NoError(t, err)
				assert.GreaterOrEqual(t, elapsed, tt.expectedMinWait-50*time.Millisecond)
			}
		})
	}
}

func TestProviderRateLimiter_Register(t *testing.T) {
	limiter := NewProviderRateLimiter()
	ctx := context.Background()

	limiter.Register("custom", 10*time.Millisecond)

	require.NoError(t, limiter.WaitForSource(ctx, "custom"))

	start := time.Now()
	require.NoError(t, limiter.WaitForSource(ctx, "custom"))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestProviderRateLimiter_ErrorBackoff(t *testing.T) {
	limiter := NewProviderRateLimiter()
	limiter.Register("flaky", 0)

	for i := 0; i < 5; i++ {
		limiter.RecordError("flaky", fmt.Errorf("boom"))
	}

	stats := limiter.GetStats()
	require.Contains(t, stats, "flaky")
	assert.True(t, stats["flaky"].InBackoff)
	assert.Equal(t, int64(5), stats["flaky"].ErrorCount)

	limiter.RecordSuccess("flaky")
	stats = limiter.GetStats()
	assert.Equal(t, int64(0), stats["flaky"].ErrorCount)
}

func TestProviderRateLimiter_ContextCancellation(t *testing.T) {
	limiter := NewProviderRateLimiter()
	limiter.Register("slow", 10*time.Second)

	ctx := context.Background()
	require.NoError(t, limiter.WaitForSource(ctx, "slow"))

	cancelCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	err := limiter.WaitForSource(cancelCtx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
