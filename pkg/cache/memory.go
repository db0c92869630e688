package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// defaultSweepInterval is how often the memory cache drops expired entries.
const defaultSweepInterval = time.Minute

// MemoryCache is a process-local cache for single-instance deployments and tests.
// A background janitor removes expired entries, so keys that are never read again
// (revoked tokens, for one) do not pile up.
type MemoryCache struct {
	items *gocache.Cache
}

func NewMemoryCache() *MemoryCache {
	return newMemoryCache(defaultSweepInterval)
}

// newMemoryCache sets the janitor interval. The janitor stops once the cache
// is garbage collected.
func newMemoryCache(interval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, interval)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	stored := v.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)
	return out, nil
}

// Set stores a copy of value. A ttl <= 0 keeps the entry until it is deleted.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	c.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.items.Delete(k)
	}
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Name() string { return "memory" }
