// Package retry runs an operation a bounded number of times with a linear
// backoff between attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// BaseDelay is multiplied by the attempt number to get the wait after it.
	BaseDelay time.Duration
	// Sleep waits for d or until ctx is done. Nil uses SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
}

// ErrorClassifier determines if an error is retryable.
type ErrorClassifier func(error) bool

// IsRetryable treats everything except context errors as retryable.
func IsRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Delay is the wait after the given 1-based attempt.
func (c Config) Delay(attempt int) time.Duration {
	return time.Duration(attempt) * c.BaseDelay
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempts
// run out. It reports how many calls were made and the last error. There is no
// wait after the final attempt.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, fn func(ctx context.Context, attempt int) error) (int, error) {
	if classifier == nil {
		classifier = IsRetryable
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return attempt, nil
		}
		if !classifier(lastErr) || attempt == cfg.MaxAttempts {
			return attempt, lastErr
		}
		if err := sleep(ctx, cfg.Delay(attempt)); err != nil {
			return attempt, err
		}
	}
	return cfg.MaxAttempts, lastErr
}

// SleepContext waits for d or returns ctx.Err() if the context ends first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
