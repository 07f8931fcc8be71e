package services

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy is a bounded fixed-delay retry. MaxAttempts counts the first try.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// OnRetry is called before each retry with the attempt that just failed.
	OnRetry func(attempt int, err error)
}

// DefaultRegistrationRetry is applied around passwordless registration-then-login.
func DefaultRegistrationRetry(delay time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: 2, Delay: delay}
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as worth another attempt.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Do runs fn until it succeeds, returns an error not marked retryable, or
// MaxAttempts is reached. The returned error is the last one fn produced, or
// the context error if ctx ends while waiting.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx, attempt)
		if err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
