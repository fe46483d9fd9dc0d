package ratelimiter

import (
	"sync"
	"time"
)

// LeakyBucket implements the RateLimiter interface using the leaky bucket
// algorithm. Requests fill the bucket; the bucket drains at a constant rate.
// Unlike the token bucket, sustained throughput is smoothed to the drain
// rate with no burst credit beyond the bucket depth.
type LeakyBucket struct {
	mu        sync.Mutex
	rate      float64 // Drain rate in requests per second.
	capacity  float64 // Bucket depth.
	level     float64 // Current fill level.
	lastDrain time.Time
}

// NewLeakyBucket creates an empty LeakyBucket.
// rate: drain rate in requests per second. capacity: bucket depth.
func NewLeakyBucket(rate float64, capacity int) *LeakyBucket {
	return &LeakyBucket{
		rate:      rate,
		capacity:  float64(capacity),
		lastDrain: time.Now(),
	}
}

// Allow adds one request to the bucket unless it would overflow.
func (lb *LeakyBucket) Allow() bool {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	now := time.Now()
	lb.level -= now.Sub(lb.lastDrain).Seconds() * lb.rate
	if lb.level < 0 {
		lb.level = 0
	}
	lb.lastDrain = now

	if lb.level+1 > lb.capacity {
		return false
	}
	lb.level++
	return true
}
