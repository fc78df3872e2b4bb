package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	Attempts     int // Total attempts, including the first
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultPolicy is used when no options are given.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:     5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Option adjusts a Policy.
type Option func(*Policy)

// WithAttempts sets the total number of attempts. Values below 1 mean 1.
func WithAttempts(n int) Option {
	return func(p *Policy) {
		if n < 1 {
			n = 1
		}
		p.Attempts = n
	}
}

// WithInitialDelay sets the delay before the second attempt.
func WithInitialDelay(d time.Duration) Option {
	return func(p *Policy) { p.InitialDelay = d }
}

// WithMaxDelay caps the delay between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(p *Policy) { p.MaxDelay = d }
}

// WithMultiplier sets the backoff factor.
func WithMultiplier(m float64) Option {
	return func(p *Policy) { p.Multiplier = m }
}

// Do calls op until it succeeds, returns a fatal error, the attempts are
// used up, or ctx is done. The returned error wraps the last failure.
func Do(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}

	delay := p.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return joinLast(fmt.Errorf("cancelled before attempt %d: %w", attempt, err), lastErr)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if IsFatal(err) {
			return err
		}
		lastErr = err

		if attempt == p.Attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return joinLast(fmt.Errorf("cancelled after %d attempts: %w", attempt, ctx.Err()), lastErr)
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", p.Attempts, lastErr)
}

func joinLast(err, last error) error {
	if last == nil {
		return err
	}
	return errors.Join(err, last)
}

// FatalError marks an error that must not be retried.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so that Do returns it immediately. Fatal(nil) is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether err was marked with Fatal.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
