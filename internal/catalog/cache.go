package catalog

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlCache is a small expiring map shared by all copies of a Client.
// A non-positive ttl disables caching.
type ttlCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[V]
	ttl     time.Duration
	writes  int
	now     func() time.Time
}

func newTTLCache[V any](ttl time.Duration) *ttlCache[V] {
	return &ttlCache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *ttlCache[V]) get(key string) (V, bool) {
	var zero V
	if c.ttl <= 0 {
		return zero, false
	}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if c.now().Before(entry.expiresAt) {
		return entry.value, true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another writer may have refreshed the entry meanwhile.
	if e, exists := c.entries[key]; exists {
		if c.now().Before(e.expiresAt) {
			return e.value, true
		}
		delete(c.entries, key)
	}
	return zero, false
}

func (c *ttlCache[V]) set(key string, value V) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.writes++
	// Sweep expired entries every 100 writes.
	if c.writes%100 == 0 {
		for k, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}

	c.entries[key] = cacheEntry[V]{value: value, expiresAt: now.Add(c.ttl)}
}

func (c *ttlCache[V]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
