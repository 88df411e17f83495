// Package retry provides the fixed-interval retry policy shared by the boot
// monitor (unbounded) and the `mnemo wait` guard (bounded).
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned by a bounded policy once its attempt budget is spent.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy describes how often and how many times an operation is attempted.
// It is immutable after construction.
type Policy struct {
	MaxAttempts int           // 0 means unbounded
	Interval    time.Duration // fixed wait after each failed attempt
	OnRetry     func(attempt int, err error)
}

// Unbounded returns a policy that retries until success or teardown.
func Unbounded(interval time.Duration) Policy {
	return Policy{Interval: interval}
}

// Bounded returns a policy that gives up after maxAttempts calls.
func Bounded(maxAttempts int, interval time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Interval: interval}
}

// WithOnRetry returns a copy of p that reports each failed attempt to fn.
func (p Policy) WithOnRetry(fn func(attempt int, err error)) Policy {
	p.OnRetry = fn
	return p
}

// Bounded reports whether the policy has an attempt budget.
func (p Policy) Bounded() bool {
	return p.MaxAttempts > 0
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Interval < 0 {
		return fmt.Errorf("interval cannot be negative")
	}
	if p.MaxAttempts < 0 {
		return fmt.Errorf("max attempts cannot be negative")
	}
	return nil
}

// Do calls fn until it returns nil. After each failure it waits Interval
// before the next call, except after the final attempt of a bounded policy.
// It returns the number of calls made. A bounded policy returns an error
// wrapping ErrExhausted and the last failure after exactly MaxAttempts calls.
// Context teardown returns ctx.Err().
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}
		attempts++
		err := fn(ctx)
		if err == nil {
			return attempts, nil
		}
		if p.OnRetry != nil {
			p.OnRetry(attempts, err)
		}
		if p.Bounded() && attempts >= p.MaxAttempts {
			return attempts, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, err)
		}
		if err := Sleep(ctx, p.Interval); err != nil {
			return attempts, err
		}
	}
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
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
