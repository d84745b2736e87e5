// Package retry runs an operation until it succeeds or a bounded number of
// attempts is used up, sleeping between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
)

// ErrExhausted is returned when every attempt failed
var ErrExhausted = eris.New("retry attempts exhausted")

// Backoff returns the delay to wait after the given failed attempt (1-based)
type Backoff func(attempt int) time.Duration

// Linear waits attempt × base
func Linear(base time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Exponential doubles base after every attempt, up to maxDelay
func Exponential(base, maxDelay time.Duration) Backoff {
	return func(attempt int) time.Duration {
		delay := base
		for i := 1; i < attempt; i++ {
			delay *= 2
			if maxDelay > 0 && delay >= maxDelay {
				return maxDelay
			}
		}
		if maxDelay > 0 && delay > maxDelay {
			return maxDelay
		}
		return delay
	}
}

// Sleeper waits for a duration or until ctx is done
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

// Policy describes how often and how patiently to retry
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	Sleeper     Sleeper
}

// DefaultPolicy makes three attempts with a linear 2s backoff
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     Linear(2 * time.Second),
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it returns nil, returns a Permanent error, ctx is done or
// MaxAttempts calls have failed. No sleep follows the last attempt.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	sleeper := p.Sleeper
	if sleeper == nil {
		sleeper = timerSleeper{}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "retry cancelled")
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var permanent *permanentError
		if errors.As(lastErr, &permanent) {
			return permanent.err
		}

		if attempt == attempts || p.Backoff == nil {
			continue
		}
		if err := sleeper.Sleep(ctx, p.Backoff(attempt)); err != nil {
			return eris.Wrap(err, "retry cancelled")
		}
	}

	return eris.Wrapf(ErrExhausted, "after %d attempts: %v", attempts, lastErr)
}
