package cache

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

const (
	// DefaultMaxEntries bounds the in-memory tier when no size is configured.
	DefaultMaxEntries = 1024
	// DefaultTTL is how long rendered pages stay cached.
	DefaultTTL = 10 * time.Minute
)

// Stats represents cache statistics
type Stats struct {
	Hits      int64
	Misses    int64
	HitRate   float64
	ItemCount int64
}

// Memory is an in-process LRU of rendered pages with per-entry expiry.
type Memory struct {
	cache   *lru.LRU[string, []byte]
	metrics *observability.Metrics
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewMemory creates an LRU holding at most maxEntries values for ttl each.
// Non-positive arguments fall back to DefaultMaxEntries and DefaultTTL.
func NewMemory(maxEntries int, ttl time.Duration, metrics *observability.Metrics) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Memory{
		cache:   lru.NewLRU[string, []byte](maxEntries, nil, ttl),
		metrics: metrics,
	}
}

// Get returns the cached value or ErrCacheMiss.
func (c *Memory) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	value, ok := c.cache.Get(key)
	if !ok {
		c.misses.Add(1)
		if c.metrics != nil {
			c.metrics.CacheMissesTotal.WithLabelValues("memory").Inc()
		}
		return nil, ErrCacheMiss
	}

	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
	}
	return value, nil
}

// Set stores value under key.
func (c *Memory) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidCacheKey
	}
	c.cache.Add(key, value)
	return nil
}

// Delete removes key if present.
func (c *Memory) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}
	c.cache.Remove(key)
	return nil
}

// Purge drops every entry.
func (c *Memory) Purge() {
	c.cache.Purge()
}

// Stats returns hit/miss counters and the current item count.
func (c *Memory) Stats() Stats {
	stats := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		ItemCount: int64(c.cache.Len()),
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}
