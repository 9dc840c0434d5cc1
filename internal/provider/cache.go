package provider

import (
	"sync"
	"time"
)

type cacheKey struct {
	key    string
	bucket int64
}

// Cache memoizes values per (key, time bucket). A bucket is
// floor(unix seconds / ttl), so every value expires at a bucket boundary.
// Expired buckets are replaced when the key is next stored, never swept.
type Cache[T any] struct {
	ttl     time.Duration
	mu      sync.Mutex
	entries map[cacheKey]T
}

// NewCache creates a cache with the given bucket width. Widths below one
// second are raised to one second.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	if ttl < time.Second {
		ttl = time.Second
	}
	return &Cache[T]{ttl: ttl, entries: make(map[cacheKey]T)}
}

// TTL returns the bucket width.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Bucket returns the bucket index for now.
func (c *Cache[T]) Bucket(now time.Time) int64 {
	width := int64(c.ttl / time.Second)
	unix := now.Unix()
	b := unix / width
	if unix < 0 && unix%width != 0 {
		b--
	}
	return b
}

// Get returns the value stored for key in now's bucket.
func (c *Cache[T]) Get(key string, now time.Time) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[cacheKey{key, c.Bucket(now)}]
	return v, ok
}

// Put stores v for key in now's bucket, dropping older buckets of the key.
func (c *Cache[T]) Put(key string, now time.Time, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(key)
	c.entries[cacheKey{key, c.Bucket(now)}] = v
}

// Invalidate drops every bucket of key.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(key)
}

func (c *Cache[T]) dropLocked(key string) {
	for k := range c.entries {
		if k.key == key {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of stored entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
