package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ProviderRateLimiter paces outbound requests to external APIs: the LLM
// providers used for generation and the dataset hosting services used for
// corpus preparation.
type ProviderRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*SourceLimiter
}

// SourceLimiter tracks rate limits for a specific API
type SourceLimiter struct {
	name            string
	requestsPerSec  float64
	lastRequestTime time.Time
	minInterval     time.Duration
	backoffUntil    time.Time
	requestCount    int64
	errorCount      int64
}

// NewProviderRateLimiter creates a rate limiter with conservative defaults
// for the APIs the pipeline talks to
func NewProviderRateLimiter() *ProviderRateLimiter {
	return &ProviderRateLimiter{
		limiters: map[string]*SourceLimiter{
			"openai": {
				name:           "openai",
				requestsPerSec: 2,
				minInterval:    500 * time.Millisecond,
			},
			"anthropic": {
				name:           "anthropic",
				requestsPerSec: 2,
				minInterval:    500 * time.Millisecond,
			},
			"huggingface": {
				name:           "huggingface",
				requestsPerSec: 1,
				minInterval:    1 * time.Second,
			},
		},
	}
}

// Register adds or replaces a limiter for a named source
func (r *ProviderRateLimiter) Register(source string, minInterval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.limiters[source] = &SourceLimiter{
		name:        source,
		minInterval: minInterval,
	}
	if minInterval > 0 {
		r.limiters[source].requestsPerSec = float64(time.Second) / float64(minInterval)
	}
}

// WaitForSource blocks until it's safe to make a request to the source
func (r *ProviderRateLimiter) WaitForSource(ctx context.Context, source string) error {
	r.mu.Lock()
	limiter, exists := r.limiters[source]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("unknown source: %s", source)
	}

	now := time.Now()

	// Check if we're in backoff
	if now.Before(limiter.backoffUntil) {
		waitTime := limiter.backoffUntil.Sub(now)
		r.mu.Unlock()

		select {
		case <-time.After(waitTime):
			return r.WaitForSource(ctx, source) // Retry after backoff
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timeSinceLastRequest := now.Sub(limiter.lastRequestTime)

	// If not enough time has passed, wait
	if timeSinceLastRequest < limiter.minInterval {
		waitTime := limiter.minInterval - timeSinceLastRequest
		r.mu.Unlock()

		select {
		case <-time.After(waitTime):
			r.mu.Lock()
			limiter.lastRequestTime = time.Now()
			limiter.requestCount++
			r.mu.Unlock()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	limiter.lastRequestTime = now
	limiter.requestCount++
	r.mu.Unlock()
	return nil
}

// RecordError records an error and potentially triggers backoff for
// subsequent requests to the source
func (r *ProviderRateLimiter) RecordError(source string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, exists := r.limiters[source]
	if !exists {
		return
	}

	limiter.errorCount++

	if limiter.errorCount > 3 {
		backoffDuration := time.Duration(limiter.errorCount) * 30 * time.Second
		if backoffDuration > 5*time.Minute {
			backoffDuration = 5 * time.Minute
		}
		limiter.backoffUntil = time.Now().Add(backoffDuration)
	}
}

// RecordSuccess resets the error count for a source
func (r *ProviderRateLimiter) RecordSuccess(source string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	limiter, exists := r.limiters[source]
	if exists {
		limiter.errorCount = 0
	}
}

// GetStats returns statistics for all sources
func (r *ProviderRateLimiter) GetStats() map[string]SourceStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make(map[string]SourceStats)
	for name, limiter := range r.limiters {
		stats[name] = SourceStats{
			RequestCount:    limiter.requestCount,
			ErrorCount:      limiter.errorCount,
			LastRequestTime: limiter.lastRequestTime,
			InBackoff:       time.Now().Before(limiter.backoffUntil),
			BackoffUntil:    limiter.backoffUntil,
		}
	}
	return stats
}

// SourceStats contains statistics for a source
type SourceStats struct {
	RequestCount    int64
	ErrorCount      int64
	LastRequestTime time.Time
	InBackoff       bool
	BackoffUntil    time.Time
}
