package ratelimit

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps buckets in a TTL map. Entries are evicted shortly
// after their window ends; an evicted bucket is indistinguishable from an
// expired one, so eviction never changes the limiter's answers.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates an in-process bucket store. window sizes the
// eviction TTL; it should match the limiter's window.
func NewMemoryStore(window time.Duration) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	// Expire a little after the window so a bucket is still readable at
	// its exact reset instant.
	return &MemoryStore{
		cache: gocache.New(window+time.Second, 2*window),
	}
}

// Get returns the bucket for key, if present.
func (s *MemoryStore) Get(_ context.Context, key string) (Bucket, bool, error) {
	value, ok := s.cache.Get(key)
	if !ok {
		return Bucket{}, false, nil
	}
	bucket, ok := value.(Bucket)
	if !ok {
		return Bucket{}, false, nil
	}
	return bucket, true, nil
}

// Set stores the bucket for key with the given TTL.
func (s *MemoryStore) Set(_ context.Context, key string, bucket Bucket, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultWindow
	}
	s.cache.Set(key, bucket, ttl+time.Second)
	return nil
}

// Clear drops all buckets.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.cache.Flush()
	return nil
}
