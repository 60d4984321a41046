package shape

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of shaped lines kept by NewCached.
const DefaultCacheSize = 4096

// Cached memoizes another Shaper in a bounded LRU. It is safe for concurrent
// use; a cache miss only costs time, never correctness. Errors are not cached.
type Cached struct {
	inner  Shaper
	cache  *lru.Cache[string, string]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCached wraps inner with an LRU of the given size.
// A size <= 0 disables caching.
func NewCached(inner Shaper, size int) (*Cached, error) {
	c := &Cached{inner: inner}
	if size <= 0 {
		return c, nil
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating shaping cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Shape returns the cached visual form of line or computes it.
func (c *Cached) Shape(line string) (string, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(line); ok {
			c.hits.Add(1)
			return v, nil
		}
	}
	c.misses.Add(1)

	v, err := c.inner.Shape(line)
	if err != nil {
		return "", err
	}
	if c.cache != nil {
		c.cache.Add(line, v)
	}
	return v, nil
}

// Len returns the number of cached lines.
func (c *Cached) Len() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge empties the cache and resets the counters.
func (c *Cached) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns the hit and miss counts since creation or the last Purge.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
