package apierr

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how a provider call is retried: which errors are worth
// another attempt, how many attempts are made, and how the delay between
// attempts grows. A zero Policy is normalized to a single attempt.
//
// Keeping the classifier inside the policy keeps provider SDK error types
// out of the call sites: each adapter builds a Policy with its own
// IsRetryable and the rest of the pipeline never inspects provider errors.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the sleep before the second attempt; it doubles after
	// each failed attempt, capped at MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// IsRetryable reports whether an error from the call is transient.
	// Nil means IsTransient.
	IsRetryable func(error) bool
}

// normalize ensures all Policy fields have usable values.
func (p *Policy) normalize() {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = p.BaseDelay
	}
	if p.IsRetryable == nil {
		p.IsRetryable = IsTransient
	}
}

// Do executes fn under the policy, sleeping with capped exponential backoff
// between attempts. Only errors the policy classifies as retryable trigger
// another attempt; any other error is returned as-is. Context cancellation
// interrupts a pending backoff sleep.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	p.normalize()

	var zero T
	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return zero, ctx.Err()
			case <-timer.C:
			}
			delay = min(delay*2, p.MaxDelay)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !p.IsRetryable(lastErr) {
			return zero, lastErr
		}
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", p.MaxAttempts, lastErr)
}
