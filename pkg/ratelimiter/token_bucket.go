package ratelimiter

import (
	"sync"
	"time"
)

// TokenBucket implements the RateLimiter interface using the token bucket
// algorithm. Tokens accrue continuously at a fixed rate up to the bucket
// capacity, which also bounds the burst size.
type TokenBucket struct {
	mu       sync.Mutex
	rate     float64 // Tokens generated per second.
	capacity float64 // Maximum number of tokens held.
	tokens   float64
	lastFill time.Time
}

// NewTokenBucket creates a TokenBucket that starts full.
// rate: tokens generated per second. capacity: burst size.
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:     rate,
		capacity: float64(capacity),
		tokens:   float64(capacity),
		lastFill: time.Now(),
	}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastFill).Seconds() * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastFill = now

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}
