// Package ratelimit implements the gateway's fixed-window request limiter.
// One counter per caller key; all requests inside a window share a single
// reset instant. The window never slides, and a rejected attempt never
// mutates the bucket, so throttled callers cannot extend their own window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults mirror the workspace product's AI quota.
const (
	DefaultWindow      = time.Minute
	DefaultMaxRequests = 60
)

// Bucket is the per-key counter state.
type Bucket struct {
	Count   int
	ResetAt time.Time
}

// BucketStore persists buckets by caller key. Implementations must be safe
// for concurrent use; the limiter serializes read-modify-write per call, so
// Get/Set themselves need no compare-and-swap semantics.
type BucketStore interface {
	Get(ctx context.Context, key string) (Bucket, bool, error)
	Set(ctx context.Context, key string, bucket Bucket, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Limiter answers whether a request should be throttled, consuming one
// quota unit when it is not.
type Limiter interface {
	// CheckAndConsume returns true when the caller is over quota. The
	// returned error reports a store failure; callers decide whether to
	// fail open.
	CheckAndConsume(ctx context.Context, key string, now time.Time) (bool, error)
}

// FixedWindowLimiter implements Limiter over a BucketStore.
type FixedWindowLimiter struct {
	mu     sync.Mutex
	store  BucketStore
	window time.Duration
	max    int
}

// Config contains limiter parameters, fixed at process start.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// NewFixedWindowLimiter creates a limiter over the given store, applying
// defaults for unset config values.
func NewFixedWindowLimiter(store BucketStore, cfg Config) *FixedWindowLimiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	return &FixedWindowLimiter{
		store:  store,
		window: cfg.Window,
		max:    cfg.MaxRequests,
	}
}

// CheckAndConsume applies the fixed-window algorithm:
//   - no bucket, or the bucket's window has ended: start a fresh window
//     with count 1, allow;
//   - bucket at or over the maximum: reject without touching the bucket;
//   - otherwise: increment and allow.
func (l *FixedWindowLimiter) CheckAndConsume(ctx context.Context, key string, now time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return false, err
	}

	if !ok || !existing.ResetAt.After(now) {
		fresh := Bucket{Count: 1, ResetAt: now.Add(l.window)}
		return false, l.store.Set(ctx, key, fresh, l.window)
	}

	if existing.Count >= l.max {
		return true, nil
	}

	updated := Bucket{Count: existing.Count + 1, ResetAt: existing.ResetAt}
	return false, l.store.Set(ctx, key, updated, time.Until(existing.ResetAt))
}

// Reset clears all buckets. Intended for tests.
func (l *FixedWindowLimiter) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Clear(ctx)
}
