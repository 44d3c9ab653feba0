package ratelimit

import (
	"sync"
	"time"
)

// DropRecorder receives a callback for every rejected request.
type DropRecorder interface {
	RecordRateLimiterDrop(limiterType string)
}

// KeyedConfig configures a KeyedLimiter instance.
type KeyedConfig struct {
	// Name identifies this limiter for metrics (e.g., "export", "upload")
	Name string

	// Token bucket settings
	Burst      float64 // Maximum tokens (burst capacity)
	RefillRate float64 // Tokens refilled per second

	// CleanupPeriod is how often idle buckets are dropped
	CleanupPeriod time.Duration

	// Optional metrics reporter
	Metrics DropRecorder
}

// KeyedLimiter keeps one token bucket per key (a client IP) and drops
// buckets that have refilled completely.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*Limiter
	config  KeyedConfig
	now     func() time.Time
	stopCh  chan struct{}
	stop    sync.Once
}

// NewKeyedLimiter creates a per-key limiter and starts its cleanup loop.
// Call Stop to end the loop.
//
// Example:
//
//	limiter := NewKeyedLimiter(KeyedConfig{
//	    Name:          "export",
//	    Burst:         10,
//	    RefillRate:    0.2, // 1 token per 5 seconds
//	    CleanupPeriod: 5 * time.Minute,
//	})
//	defer limiter.Stop()
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 5 * time.Minute
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*Limiter),
		config:  cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow consumes a token from key's bucket. An empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	if kl.limiterFor(key).Allow() {
		return true
	}
	if kl.config.Metrics != nil {
		kl.config.Metrics.RecordRateLimiterDrop(kl.config.Name)
	}
	return false
}

// RetryAfter returns how long key must wait for its next token.
func (kl *KeyedLimiter) RetryAfter(key string) time.Duration {
	kl.mu.RLock()
	l, ok := kl.entries[key]
	kl.mu.RUnlock()
	if !ok {
		return 0
	}
	return l.RetryAfter()
}

func (kl *KeyedLimiter) limiterFor(key string) *Limiter {
	kl.mu.RLock()
	l, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return l
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok = kl.entries[key]; ok {
		return l
	}
	l = newWithClock(kl.config.Burst, kl.config.RefillRate, kl.now)
	kl.entries[key] = l
	return l
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

// sweep drops buckets that have refilled completely.
func (kl *KeyedLimiter) sweep() {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	for key, l := range kl.entries {
		if l.IsFull() {
			delete(kl.entries, key)
		}
	}
}

func (kl *KeyedLimiter) cleanupLoop() {
	ticker := time.NewTicker(kl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.sweep()
		}
	}
}

// Stop ends the cleanup loop. Safe to call multiple times.
func (kl *KeyedLimiter) Stop() {
	kl.stop.Do(func() { close(kl.stopCh) })
}
