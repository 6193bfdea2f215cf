// Package retry generalizes the teacher agent's exponential-backoff
// retry helper (pkg/retry/retry.go) from installer-download retries to
// any transient operation — provider network calls here, same shape.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/winpacman/core/internal/logging"
)

// NonRetryable wraps an error that should be surfaced immediately
// instead of retried, mirroring the teacher's NonRetryableError
// interface.
type NonRetryable struct{ Err error }

func (e NonRetryable) Error() string { return e.Err.Error() }
func (e NonRetryable) Unwrap() error { return e.Err }

// Config controls attempt count and backoff shape. Spec.md §5 caps
// provider network retries at 2.
type Config struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Default is the provider network-request retry policy from spec.md §5:
// up to 2 retries (3 attempts total) with exponential backoff.
func Default() Config {
	return Config{MaxRetries: 3, InitialInterval: 500 * time.Millisecond, Multiplier: 2}
}

// Do retries action with exponential backoff, honoring ctx cancellation
// between attempts and stopping immediately on a NonRetryable error.
func Do(ctx context.Context, cfg Config, action func() error) error {
	log := logging.Component("retry")
	interval := cfg.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		lastErr = action()
		if lastErr == nil {
			return nil
		}

		var nonRetryable NonRetryable
		if errors.As(lastErr, &nonRetryable) {
			log.Warn("non-retryable error, giving up", "attempt", attempt, "error", lastErr)
			return lastErr
		}

		if attempt == cfg.MaxRetries {
			log.Warn("attempt failed, no more retries", "attempt", attempt, "max_attempts", cfg.MaxRetries, "error", lastErr)
			break
		}

		log.Warn("attempt failed, retrying", "attempt", attempt, "max_attempts", cfg.MaxRetries, "delay", interval.String(), "error", lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		interval = time.Duration(float64(interval) * cfg.Multiplier)
	}

	return fmt.Errorf("action failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}
