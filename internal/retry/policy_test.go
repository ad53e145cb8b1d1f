package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moodtunes/mood-music-api/internal/retry"
	"github.com/stretchr/testify/require"
)

var (
	errTransient = errors.New("transient")
	errPermanent = errors.New("permanent")
)

func TestPolicy_Do(t *testing.T) {
	t.Run("succeeds first time", func(t *testing.T) {
		calls := 0
		err := retry.Policy{MaxAttempts: 3}.Do(context.Background(), func(context.Context, int) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		var seen []int
		err := retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}.Do(context.Background(), func(_ context.Context, attempt int) error {
			seen = append(seen, attempt)
			return errTransient
		})
		require.ErrorIs(t, err, errTransient)
		require.Equal(t, []int{1, 2, 3}, seen)
	})

	t.Run("recovers after transient failure", func(t *testing.T) {
		calls := 0
		err := retry.Policy{MaxAttempts: 3}.Do(context.Background(), func(context.Context, int) error {
			calls++
			if calls < 2 {
				return errTransient
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, calls)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		calls := 0
		p := retry.Policy{
			MaxAttempts: 5,
			Retryable:   func(err error) bool { return !errors.Is(err, errPermanent) },
		}
		err := p.Do(context.Background(), func(context.Context, int) error {
			calls++
			return errPermanent
		})
		require.ErrorIs(t, err, errPermanent)
		require.Equal(t, 1, calls)
	})

	t.Run("delays double each retry", func(t *testing.T) {
		var delays []time.Duration
		p := retry.Policy{
			MaxAttempts: 4,
			BaseDelay:   time.Millisecond,
			OnRetry:     func(_ error, d time.Duration) { delays = append(delays, d) },
		}
		_ = p.Do(context.Background(), func(context.Context, int) error { return errTransient })
		require.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, delays)
	})

	t.Run("stops waiting when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		p := retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Hour,
			OnRetry:     func(error, time.Duration) { cancel() },
		}
		start := time.Now()
		err := p.Do(ctx, func(context.Context, int) error {
			calls++
			return errTransient
		})
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, 1, calls)
		require.Less(t, time.Since(start), time.Minute)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_ = retry.Policy{}.Do(context.Background(), func(context.Context, int) error {
			calls++
			return errTransient
		})
		require.Equal(t, 1, calls)
	})
}
