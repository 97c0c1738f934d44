package utils

import (
	"sort"
	"sync"
	"sync/atomic"

	siggserrors "github.com/toyz/siggs/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// Cache is a permanent memoizing cache: an entry, once stored, is never
// replaced or evicted, and concurrent misses on one key share a single build.
type Cache[V comparable] struct {
	items map[string]V
	mutex sync.RWMutex
	group singleflight.Group

	hits     atomic.Uint64
	misses   atomic.Uint64
	builds   atomic.Uint64
	failures atomic.Uint64
}

// NewCache creates a new memoizing cache
func NewCache[V comparable]() *Cache[V] {
	return &Cache[V]{
		items: make(map[string]V),
	}
}

// Get retrieves an item from the cache
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	value, exists := c.items[key]
	return value, exists
}

// GetOrCreate returns the cached value for key, running build at most once
// per key when it is absent. Failed builds are not cached.
func (c *Cache[V]) GetOrCreate(key string, build func() (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		c.hits.Add(1)
		return value, nil
	}
	c.misses.Add(1)

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A previous flight may have stored the key after our first lookup
		if value, ok := c.Get(key); ok {
			return value, nil
		}

		value, err := build()
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}
		c.builds.Add(1)
		c.store(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// store populates key, panicking if a different value is already present
func (c *Cache[V]) store(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if existing, exists := c.items[key]; exists && existing != value {
		panic(siggserrors.NewConcurrencyViolation(key))
	}
	c.items[key] = value
}

// Size returns the number of items in the cache
func (c *Cache[V]) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.items)
}

// Keys returns all keys in the cache, sorted
func (c *Cache[V]) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys
}

// ForEach iterates over all items in the cache
func (c *Cache[V]) ForEach(fn func(key string, value V)) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for key, value := range c.items {
		fn(key, value)
	}
}

// GetStats returns cache statistics
func (c *Cache[V]) GetStats() CacheStats {
	return CacheStats{
		Size:     c.Size(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Builds:   c.builds.Load(),
		Failures: c.failures.Load(),
	}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size     int
	Hits     uint64
	Misses   uint64
	Builds   uint64
	Failures uint64
}
