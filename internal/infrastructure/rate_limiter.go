package infrastructure

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyedRateLimiter keeps one token bucket per key (a user id or client IP).
// Buckets idle for longer than idleTTL are dropped by a background sweep.
type KeyedRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
	stop     chan struct{}
	once     sync.Once
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedRateLimiter creates a limiter allowing rps requests per second per
// key with the given burst, and starts its cleanup goroutine.
func NewKeyedRateLimiter(rps float64, burst int) *KeyedRateLimiter {
	rl := &KeyedRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
		stop:     make(chan struct{}),
	}
	go rl.cleanup(5 * time.Minute)
	return rl
}

// Allow consumes one token for key and reports whether the request may proceed.
func (rl *KeyedRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = time.Now()
	rl.mu.Unlock()

	return e.limiter.Allow()
}

// RetryAfter estimates how long key must wait for its next token.
func (rl *KeyedRateLimiter) RetryAfter(key string) time.Duration {
	rl.mu.Lock()
	e, ok := rl.limiters[key]
	rl.mu.Unlock()
	if !ok || rl.rate <= 0 {
		return 0
	}
	missing := 1 - e.limiter.Tokens()
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / float64(rl.rate) * float64(time.Second))
}

// Len returns the number of tracked keys.
func (rl *KeyedRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Close stops the cleanup goroutine.
func (rl *KeyedRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *KeyedRateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

func (rl *KeyedRateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, e := range rl.limiters {
		if now.Sub(e.lastSeen) > rl.idleTTL {
			delete(rl.limiters, key)
		}
	}
}
