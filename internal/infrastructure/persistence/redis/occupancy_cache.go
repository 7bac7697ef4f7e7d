package redis

import (
	"context"
	"time"
)

// OccupancyCache holds the per-building occupancy aggregate for a short
// window. Occupancy is recomputed from the movement log on every miss, so a
// stale or unavailable cache only costs latency, never correctness.
//
// A nil *OccupancyCache is a no-op, mirroring SessionCache.
type OccupancyCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewOccupancyCache creates an occupancy cache with the given TTL.
func NewOccupancyCache(cache *Cache, ttl time.Duration) *OccupancyCache {
	return &OccupancyCache{cache: cache, ttl: ttl}
}

// Get returns the cached counts for a kind. Returns ErrCacheMiss when absent
// or when caching is disabled.
func (c *OccupancyCache) Get(ctx context.Context, kind string) (map[string]int, error) {
	if c == nil || c.cache == nil {
		return nil, ErrCacheMiss
	}

	var counts map[string]int
	if err := c.cache.Get(ctx, OccupancyKey(kind), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Set caches the counts for a kind.
func (c *OccupancyCache) Set(ctx context.Context, kind string, counts map[string]int) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Set(ctx, OccupancyKey(kind), counts, c.ttl)
}

// Invalidate drops the cached counts for a kind. Called after every toggle
// and registration so readers never see counts older than the TTL window.
func (c *OccupancyCache) Invalidate(ctx context.Context, kind string) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, OccupancyKey(kind))
}
