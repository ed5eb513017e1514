// Package retry provides bounded exponential backoff for transient
// provider failures.
package retry

import (
	"context"
	"time"

	"github.com/doclane/doclane/internal/core/domain"
)

const (
	// DefaultMaxAttempts is the attempt ceiling including the first try.
	DefaultMaxAttempts = 4

	// DefaultBaseDelay is the delay before the first retry.
	DefaultBaseDelay = 500 * time.Millisecond

	// DefaultMaxDelay caps the backoff growth.
	DefaultMaxDelay = 8 * time.Second
)

// Policy describes a bounded exponential backoff schedule.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy returns the schedule used for provider calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Do runs fn, retrying while it fails with a transient error
// (domain.IsTransient). Non-transient errors return immediately. When
// the attempt ceiling is exhausted the last error is returned, still
// wrapping domain.ErrProviderUnavailable so callers can classify it as
// terminal for the enclosing document.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}

	var err error
	delay := p.BaseDelay

	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || !domain.IsTransient(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
}
