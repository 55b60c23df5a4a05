package services

import (
	"strings"
	"sync"
	"time"
)

// ViewCache memoizes computed view payloads (timetable matrices, report
// feeds) keyed by the canonical inputs that produced them. Entries expire
// after a TTL and are invalidated by prefix when a mutation makes them
// stale.
type ViewCache struct {
	mu      sync.Mutex
	entries map[string]viewCacheEntry
	ttl     time.Duration

	// now is swappable for tests.
	now func() time.Time
}

type viewCacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewViewCache creates a cache whose entries live for ttl.
func NewViewCache(ttl time.Duration) *ViewCache {
	return &ViewCache{
		entries: make(map[string]viewCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Key joins the canonical inputs of a view into a cache key. Callers pass
// every parameter that affects the payload, in a fixed order.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Get returns the cached value for key, if present and not expired.
func (c *ViewCache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key.
func (c *ViewCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = viewCacheEntry{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// InvalidatePrefix drops every entry whose key starts with prefix. Used
// after report mutations, where only the affected route's views go stale.
func (c *ViewCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Clear drops every entry.
func (c *ViewCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]viewCacheEntry)
}
