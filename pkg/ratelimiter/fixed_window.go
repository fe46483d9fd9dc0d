package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowCounter implements the RateLimiter interface by counting
// requests inside fixed, non-overlapping time windows. The counter resets
// when a new window starts, so up to 2x the limit can pass around a window
// boundary; acceptable for the coarse protection this is used for.
type FixedWindowCounter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
}

// NewFixedWindowCounter creates a FixedWindowCounter.
func NewFixedWindowCounter(limit int, window time.Duration) *FixedWindowCounter {
	return &FixedWindowCounter{
		limit:       limit,
		window:      window,
		windowStart: time.Now(),
	}
}

// Allow counts the request against the current window.
func (fw *FixedWindowCounter) Allow() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := time.Now()
	if now.Sub(fw.windowStart) >= fw.window {
		fw.windowStart = now
		fw.count = 0
	}

	if fw.count >= fw.limit {
		return false
	}
	fw.count++
	return true
}
