package app

import (
	"sync"
	"time"

	"datalens/domain/core"
)

type cacheEntry struct {
	datasetID core.ID
	value     any
	storedAt  time.Time
}

// ResultCache memoizes engine results per (dataset, engine, params). A zero
// TTL never expires entries; a non-positive max disables caching.
type ResultCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]cacheEntry
	now        func() time.Time
}

// NewResultCache creates a cache bounded by ttl and maxEntries.
func NewResultCache(ttl time.Duration, maxEntries int) *ResultCache {
	return &ResultCache{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]cacheEntry),
		now:        time.Now,
	}
}

// CacheKey builds the canonical key. Params are hashed independent of order.
func CacheKey(id core.ID, engine string, params map[string]string) string {
	return id.String() + "|" + engine + "|" + core.HashParams(params).String()
}

// Get returns a live entry.
func (c *ResultCache) Get(key string) (any, bool) {
	if c == nil || c.maxEntries <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(e) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Put stores value, evicting expired entries and then the oldest when full.
func (c *ResultCache) Put(key string, id core.ID, value any) {
	if c == nil || c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evict()
	}
	c.entries[key] = cacheEntry{datasetID: id, value: value, storedAt: c.now()}
}

// Invalidate drops every entry of a dataset and returns how many were removed.
func (c *ResultCache) Invalidate(id core.ID) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if e.datasetID == id {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) expired(e cacheEntry) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl
}

// evict must be called with mu held.
func (c *ResultCache) evict() {
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
		}
	}
	for len(c.entries) >= c.maxEntries {
		var oldestKey string
		var oldest time.Time
		first := true
		for k, e := range c.entries {
			if first || e.storedAt.Before(oldest) || (e.storedAt.Equal(oldest) && k < oldestKey) {
				oldestKey, oldest, first = k, e.storedAt, false
			}
		}
		delete(c.entries, oldestKey)
	}
}
