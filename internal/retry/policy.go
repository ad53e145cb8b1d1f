// Package retry runs an operation with bounded attempts and exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how often and how patiently an operation is retried.
// The delay before retry n (zero based) is BaseDelay * 2^n.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable reports whether a failed attempt may be retried. A nil
	// predicate retries every error.
	Retryable func(error) bool
	// OnRetry is called before sleeping between attempts.
	OnRetry func(err error, delay time.Duration)
}

// Do calls op until it succeeds, returns a non-retryable error, the attempt
// budget is spent, or ctx is done. The error of the last attempt is returned,
// or ctx.Err() when the wait was cut short.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = p.BaseDelay << uint(attempts)
	exp.MaxElapsedTime = 0
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := op(ctx, attempt)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, p.OnRetry)
}
