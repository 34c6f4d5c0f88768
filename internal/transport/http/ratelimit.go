package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// newEventLimiter returns a token bucket for one connection's inbound events.
// A non-positive rate disables limiting.
func newEventLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// keyedLimiter hands out one limiter per key (client IP for login attempts)
// and forgets keys that have been idle for a full window.
type keyedLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	window  time.Duration
	now     func() time.Time
	entries map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newKeyedLimiter allows attempts events per window for every key.
func newKeyedLimiter(attempts int, window time.Duration) *keyedLimiter {
	return &keyedLimiter{
		limit:   rate.Every(window / time.Duration(attempts)),
		burst:   attempts,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

func (k *keyedLimiter) allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	k.sweep(now)

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// sweep must be called with mu held.
func (k *keyedLimiter) sweep(now time.Time) {
	for key, e := range k.entries {
		if now.Sub(e.lastSeen) > k.window {
			delete(k.entries, key)
		}
	}
}
