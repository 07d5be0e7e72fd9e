package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter caps events per key per wall-clock window. The
// gateway uses it to bound inbound frames per connection; keys are
// connection ids and are evicted shortly after a connection goes quiet.
type FixedWindowRateLimiter struct {
	limit       int64
	window      time.Duration
	counts      sync.Map // key -> *windowCounter
	cleanupTick *time.Ticker
	done        chan struct{}
}

type windowCounter struct {
	mu      sync.Mutex
	count   int64
	resetAt time.Time
}

func NewFixedWindowRateLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		limit:       int64(limit),
		window:      window,
		cleanupTick: time.NewTicker(window),
		done:        make(chan struct{}),
	}
	go rl.runCleanup()
	return rl
}

// Allow records one event for key. When the budget is exhausted it reports
// false with the time until the window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	val, _ := rl.counts.LoadOrStore(key, &windowCounter{})
	counter := val.(*windowCounter)

	counter.mu.Lock()
	defer counter.mu.Unlock()

	if !now.Before(counter.resetAt) {
		counter.count = 0
		counter.resetAt = now.Truncate(rl.window).Add(rl.window)
	}

	if counter.count >= rl.limit {
		return false, time.Until(counter.resetAt)
	}

	counter.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) runCleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.evictStale(time.Now())
		case <-rl.done:
			return
		}
	}
}

// evictStale drops counters whose window already ended; an active key is
// recreated on its next Allow.
func (rl *FixedWindowRateLimiter) evictStale(now time.Time) {
	rl.counts.Range(func(key, value any) bool {
		counter := value.(*windowCounter)

		counter.mu.Lock()
		stale := now.After(counter.resetAt)
		counter.mu.Unlock()

		if stale {
			rl.counts.Delete(key)
		}
		return true
	})
}

func (rl *FixedWindowRateLimiter) Close() {
	close(rl.done)
	rl.cleanupTick.Stop()
}
