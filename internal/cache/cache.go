package cache

import (
	"sync"
	"time"
)

// Item is a cached value with its expiry
type Item[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache is an in-memory TTL cache safe for concurrent use
type Cache[V any] struct {
	items map[string]Item[V]
	ttl   time.Duration
	mutex sync.RWMutex
	now   func() time.Time
}

// New creates a cache whose entries live for ttl
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		items: make(map[string]Item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns a live entry. Expired entries are removed.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	item, exists := c.items[key]
	c.mutex.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}

	if c.now().After(item.ExpiresAt) {
		c.mutex.Lock()
		// Another writer may have refreshed the key meanwhile
		if current, ok := c.items[key]; ok && c.now().After(current.ExpiresAt) {
			delete(c.items, key)
		}
		c.mutex.Unlock()
		return zero, false
	}

	return item.Data, true
}

// Set stores data under key using the cache TTL
func (c *Cache[V]) Set(key string, data V) {
	c.SetWithTTL(key, data, c.ttl)
}

// SetWithTTL stores data under key for ttl
func (c *Cache[V]) SetWithTTL(key string, data V, ttl time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items[key] = Item[V]{
		Data:      data,
		ExpiresAt: c.now().Add(ttl),
	}
}

// Delete removes an item from the cache
func (c *Cache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *Cache[V]) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[string]Item[V])
}

// Len returns the number of stored entries, expired or not
func (c *Cache[V]) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}
