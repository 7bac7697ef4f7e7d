package redis

import (
	"context"
	"errors"
	"time"

	"github.com/campus-hub/campus-presence/internal/domain/session"
)

// SessionCache keeps validated sessions in Redis so that the auth middleware
// does not hit PostgreSQL on every request. The TTL always matches the
// session's remaining lifetime, so a cache entry can never outlive the row
// it mirrors.
//
// A nil *SessionCache is a no-op; callers never need to branch on whether
// caching is enabled.
type SessionCache struct {
	cache *Cache
}

// NewSessionCache creates a session cache on top of the base cache.
func NewSessionCache(cache *Cache) *SessionCache {
	return &SessionCache{cache: cache}
}

// Get returns a cached session. Returns ErrCacheMiss when absent or when
// caching is disabled.
func (c *SessionCache) Get(ctx context.Context, id string) (session.Session, error) {
	if c == nil || c.cache == nil {
		return session.Session{}, ErrCacheMiss
	}

	var s session.Session
	if err := c.cache.Get(ctx, SessionKey(id), &s); err != nil {
		return session.Session{}, err
	}
	return s, nil
}

// Set caches a session for its remaining lifetime. Sessions already expired
// are not cached.
func (c *SessionCache) Set(ctx context.Context, s session.Session, now time.Time) error {
	if c == nil || c.cache == nil {
		return nil
	}

	ttl := s.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return c.cache.Set(ctx, SessionKey(s.ID), s, ttl)
}

// Delete drops a session from the cache.
func (c *SessionCache) Delete(ctx context.Context, id string) error {
	if c == nil || c.cache == nil {
		return nil
	}
	return c.cache.Delete(ctx, SessionKey(id))
}

// IsMiss reports whether the error is a plain cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
