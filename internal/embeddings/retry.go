package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrRetriesExhausted is joined with the last failure once every attempt failed
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrInvalidMaxAttempts is returned for policies that allow no attempt at all
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)

// permanentError marks a failure that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so RetryPolicy.Do returns it without further attempts
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryPolicy describes bounded exponential backoff without jitter: the wait
// after attempt n is BaseDelay * 2^(n-1).
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep defaults to a context-aware timer
	Sleep SleepFunc
	// OnRetry is called before each wait
	OnRetry func(attempt int, wait time.Duration, err error)
}

// DefaultRetryPolicy retries three times starting at one second
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Backoff returns the wait following the given 1-based attempt
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}

// Do runs op until it succeeds, returns a permanent error, the context ends,
// or MaxAttempts is reached. The last failure stays reachable via errors.Is/As.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return errors.Join(err, lastErr)
			}
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if attempt == p.MaxAttempts {
			break
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, wait, lastErr)
		}
		if err := sleep(ctx, wait); err != nil {
			return errors.Join(err, lastErr)
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, p.MaxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
