package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/moodtunes/mood-music-api/internal/config"
	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// sweepEvery is the number of new keys after which idle limiters are dropped.
const sweepEvery = 100

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a Quota per key with a token bucket per key. A bucket
// holds Quota.Requests tokens and refills at Requests per Quota.Per, so a
// client may burst up to the quota and then continues at the average rate.
type RateLimiter struct {
	mu           sync.Mutex
	limiters     map[string]*limiterEntry
	quota        config.Quota
	now          func() time.Time
	sweepCounter int // tracks new keys created; triggers sweep every sweepEvery
}

func NewRateLimiter(quota config.Quota) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		quota:    quota,
		now:      time.Now,
	}
}

// Allow takes one token for key. When none is available it reports how long
// until one will be.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	e, ok := rl.limiters[key]
	if !ok {
		every := rl.quota.Per / time.Duration(rl.quota.Requests)
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(every), rl.quota.Requests)}
		rl.limiters[key] = e

		rl.sweepCounter++
		if rl.sweepCounter >= sweepEvery {
			rl.sweep(now)
			rl.sweepCounter = 0
		}
	}
	e.lastSeen = now

	res := e.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, rl.quota.Per
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops limiters idle for a full period; their bucket would be full
// again, the same as a fresh one. Must be called while holding rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, e := range rl.limiters {
		if now.Sub(e.lastSeen) >= rl.quota.Per {
			delete(rl.limiters, k)
		}
	}
}

// clientIP is the host part of RemoteAddr. Forwarding headers are not
// trusted; they are client controlled.
func clientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

// RateLimitMiddleware applies the configured quota per route and client address.
func (s *Server) RateLimitMiddleware(route string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, retryAfter := s.limiter.Allow(route + "|" + ip)
			if allowed {
				next(w, r)
				return
			}

			retrySeconds := int(math.Ceil(retryAfter.Seconds()))
			zerolog.Ctx(r.Context()).Warn().
				Str("route", route).
				Str("client_ip", ip).
				Int("retry_after", retrySeconds).
				Msg("Rate limit exceeded")
			s.metrics.RateLimited(route)

			w.Header().Set("Retry-After", strconv.Itoa(retrySeconds))
			writeError(w, r, apperrors.ErrRateLimited)
		}
	}
}
