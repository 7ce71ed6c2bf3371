package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache implements Cache in process memory
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache. A zero defaultTTL keeps items
// until they are deleted.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

// Set stores a value in the cache with the given TTL (0 = default)
func (c *MemoryCache) Set(key string, value any, ttl time.Duration) {
	c.cache.Set(key, value, ttlOrDefault(ttl))
}

// Add stores a value only if the key is not already present
func (c *MemoryCache) Add(key string, value any, ttl time.Duration) error {
	if err := c.cache.Add(key, value, ttlOrDefault(ttl)); err != nil {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Keys returns the unexpired keys with the given prefix in sorted order
func (c *MemoryCache) Keys(prefix string) []string {
	var keys []string
	for k := range c.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of items, including expired ones not yet cleaned up
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

func ttlOrDefault(ttl time.Duration) time.Duration {
	switch {
	case ttl == NoExpiration:
		return gocache.NoExpiration
	case ttl <= 0:
		return gocache.DefaultExpiration
	default:
		return ttl
	}
}
