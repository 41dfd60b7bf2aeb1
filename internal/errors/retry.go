package errors

import (
	"context"
	"time"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of retry attempts after the initial call.
	MaxRetries int

	// Delay is the wait between attempts.
	Delay time.Duration
}

// DefaultRetryConfig matches the store contract: one retry, short delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 1,
		Delay:      100 * time.Millisecond,
	}
}

// Retry executes fn, retrying on retryable errors up to MaxRetries
// times. Non-retryable errors return immediately, as does context
// cancellation.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt >= cfg.MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}
	return lastErr
}
