// Package ratelimit provides token bucket rate limiting, both as a single
// bucket and as a set of buckets keyed by client.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements a token bucket rate limiter.
// It is safe for concurrent use.
//
// Tokens are added at refillRate per second up to maxTokens; each request
// consumes one token and is rejected when none is available.
type Limiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
}

// New creates a new rate limiter with a full bucket.
//
// Parameters:
//   - maxTokens: maximum number of tokens in the bucket (burst capacity)
//   - refillRate: number of tokens to add per second
func New(maxTokens, refillRate float64) *Limiter {
	return newWithClock(maxTokens, refillRate, time.Now)
}

func newWithClock(maxTokens, refillRate float64, now func() time.Time) *Limiter {
	return &Limiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now(),
		now:        now,
	}
}

// refill adds tokens based on elapsed time since last refill.
// Must be called with mu held.
func (l *Limiter) refill() {
	now := l.now()
	elapsed := now.Sub(l.lastRefill).Seconds()

	l.tokens = min(l.maxTokens, l.tokens+elapsed*l.refillRate)
	l.lastRefill = now
}

// Allow consumes a token if one is available. It never blocks.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true
	}
	return false
}

// RetryAfter returns how long until the next token is available.
// Zero means a request would be allowed now.
func (l *Limiter) RetryAfter() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	if l.tokens >= 1.0 || l.refillRate <= 0 {
		return 0
	}
	return time.Duration((1 - l.tokens) / l.refillRate * float64(time.Second))
}

// Available returns the current number of available tokens.
func (l *Limiter) Available() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens
}

// IsFull reports whether the bucket has refilled completely, which marks
// an idle limiter that can be discarded.
func (l *Limiter) IsFull() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill()
	return l.tokens >= l.maxTokens
}
