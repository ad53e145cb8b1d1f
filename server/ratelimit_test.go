package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moodtunes/mood-music-api/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(quota config.Quota) (*RateLimiter, *time.Time) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(quota)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	rl, now := newTestLimiter(config.Quota{Requests: 3, Per: time.Minute})

	for i := 0; i < 3; i++ {
		ok, wait := rl.Allow("a")
		require.True(t, ok, "request %d", i)
		require.Zero(t, wait)
	}

	ok, wait := rl.Allow("a")
	require.False(t, ok)
	require.Equal(t, 20*time.Second, wait)

	// Other keys are independent
	ok, _ = rl.Allow("b")
	require.True(t, ok)

	// A rejected request does not consume the next token
	*now = now.Add(20 * time.Second)
	ok, _ = rl.Allow("a")
	require.True(t, ok)
	ok, _ = rl.Allow("a")
	require.False(t, ok)
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl, now := newTestLimiter(config.Quota{Requests: 1, Per: time.Minute})

	rl.Allow("idle")
	*now = now.Add(2 * time.Minute)
	for i := 0; i < sweepEvery; i++ {
		rl.Allow(fmt.Sprintf("client-%d", i))
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.NotContains(t, rl.limiters, "idle")
	require.Len(t, rl.limiters, sweepEvery)
}

func TestRateLimiter_Concurrent(t *testing.T) {
	rl, _ := newTestLimiter(config.Quota{Requests: 5, Per: time.Minute})

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
		denied  atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if ok, _ := rl.Allow("shared"); ok {
				allowed.Add(1)
				return
			}
			denied.Add(1)
		}()
	}
	close(start)
	wg.Wait()

	require.EqualValues(t, 5, allowed.Load())
	require.EqualValues(t, 195, denied.Load())
}
