package cache

import (
	"context"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	queryRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "couchers_query_retries_total",
		Help: "Total number of query fetch retry attempts",
	})

	queryRetryBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "couchers_query_retry_backoff_seconds",
		Help:    "Backoff duration before query fetch retries",
		Buckets: []float64{0, 0.1, 0.5, 1, 2, 5, 10},
	})
)

// RetryConfig controls how often a failed fetch is re-run.
type RetryConfig struct {
	// Retries is the number of additional attempts after the first failure.
	Retries int

	// InitialBackoff is the wait before the first retry. Zero retries
	// immediately.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries.
	MaxBackoff time.Duration

	// BackoffMultiplier grows the wait after each retry.
	BackoffMultiplier float64
}

// DefaultRetryConfig retries once, without delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Retries:           1,
		InitialBackoff:    0,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ShouldRetryFunc decides whether the failure of attempt (1-based) is retried.
type ShouldRetryFunc func(attempt int, err error) bool

// retryWithBackoff runs fn until it succeeds, the retry budget is spent,
// shouldRetry declines, or ctx is done. It adds jitter to non-zero waits.
func retryWithBackoff(ctx context.Context, logger zerolog.Logger, config RetryConfig, shouldRetry ShouldRetryFunc, fn func(context.Context) (any, error)) (any, error) {
	backoff := config.InitialBackoff
	maxAttempts := config.Retries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Debug().Int("attempt", attempt).Msg("Query succeeded after retry")
			}
			return v, nil
		}
		lastErr = err

		if attempt >= maxAttempts || ctx.Err() != nil {
			break
		}
		if shouldRetry != nil && !shouldRetry(attempt, err) {
			break
		}

		queryRetriesTotal.Inc()

		wait := time.Duration(0)
		if backoff > 0 {
			wait = time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		}
		queryRetryBackoffSeconds.Observe(wait.Seconds())

		logger.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("Retrying query after failure")

		if wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if config.MaxBackoff > 0 && backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return nil, lastErr
}
