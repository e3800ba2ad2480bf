// Package retry provides the fixed-schedule retry discipline used for all
// outbound calls to external services (identity lookups, refunds).
//
// Every call site shares the same policy: a short fixed delay schedule, a
// per-attempt timeout, and a classifier that separates retryable failures
// (network errors, ambiguous responses) from terminal ones. The schedule is
// deliberately small - the caller is a human-paced event handler, not a
// batch job, and must reach a terminal answer quickly.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultDelays is the standard delay schedule. One attempt is made per
// entry; after a retryable failure the corresponding delay elapses before
// the next attempt (or before giving up after the final one).
var DefaultDelays = []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second}

// DefaultAttemptTimeout bounds each individual attempt.
const DefaultAttemptTimeout = 5 * time.Second

// ErrExhausted is returned (wrapped) when every attempt in the schedule
// failed with a retryable error.
var ErrExhausted = errors.New("retry schedule exhausted")

// permanentError marks an error as terminal so Do stops immediately.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps an error to tell Do that retrying cannot help.
// Returns nil if err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Policy describes one retry discipline: the delay schedule and the
// per-attempt timeout. The zero value is not usable; use DefaultPolicy or
// construct explicitly (tests use millisecond schedules).
type Policy struct {
	// Delays holds one entry per attempt. Do makes len(Delays) attempts.
	Delays []time.Duration

	// AttemptTimeout bounds each attempt via a derived context.
	AttemptTimeout time.Duration
}

// DefaultPolicy returns the standard policy shared by every external call.
func DefaultPolicy() Policy {
	return Policy{
		Delays:         DefaultDelays,
		AttemptTimeout: DefaultAttemptTimeout,
	}
}

// Do runs op once per schedule entry until it succeeds or returns a
// Permanent error. After each retryable failure the schedule delay elapses
// before the next attempt; the delay after the final attempt also elapses
// before giving up, matching the observed pacing of the services involved.
//
// Returns nil on success, the unwrapped error for a Permanent failure,
// the parent context's error if it is cancelled, and an error wrapping
// ErrExhausted (plus the last attempt error) when the schedule runs out.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for _, delay := range p.Delays {
		attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
		err := op(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		// Parent cancellation is not retryable.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		lastErr = err

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrExhausted, len(p.Delays), lastErr)
}

// Exhausted reports whether err came from a fully exhausted schedule.
func Exhausted(err error) bool {
	return errors.Is(err, ErrExhausted)
}
