package ingest

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces a minimum delay between consecutive requests.
// All pipeline workers share one limiter so the admission site sees a
// steady request rate regardless of concurrency.
type RateLimiter struct {
	mu    sync.Mutex
	next  time.Time
	delay time.Duration
}

// NewRateLimiter creates a limiter with the given minimum delay.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{delay: delay}
}

// Wait blocks until this caller's turn comes up or ctx is done.
// Callers are serialized by reserving send slots, so bursts spread out
// evenly instead of racing the same deadline.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	if r.next.Before(now) {
		r.next = now
	}
	wait := r.next.Sub(now)
	r.next = r.next.Add(r.delay)
	r.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	return Sleep(ctx, wait)
}
