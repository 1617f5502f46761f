package datatable

import (
	"sync"
	"time"
)

// DefaultStaleTime is how long a fetched page is served from the cache
const DefaultStaleTime = 10 * time.Minute

type cacheKey struct {
	endpoint string
	params   string
}

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

// Cache holds fetched pages keyed by endpoint and the full parameter
// tuple. It also remembers the last page stored per endpoint so a table
// can keep showing it while the next page loads.
type Cache struct {
	staleTime time.Duration
	now       func() time.Time

	mu           sync.Mutex
	entries      map[cacheKey]cacheEntry
	placeholders map[string]interface{}
}

// NewCache creates a cache. A non-positive staleTime uses DefaultStaleTime.
func NewCache(staleTime time.Duration) *Cache {
	if staleTime <= 0 {
		staleTime = DefaultStaleTime
	}
	return &Cache{
		staleTime:    staleTime,
		now:          time.Now,
		entries:      make(map[cacheKey]cacheEntry),
		placeholders: make(map[string]interface{}),
	}
}

// Get returns a fresh entry. Stale entries are dropped.
func (c *Cache) Get(endpoint, params string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey{endpoint, params}
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.staleTime {
		delete(c.entries, k)
		return nil, false
	}
	return e.value, true
}

// Put stores value and makes it the endpoint's placeholder
func (c *Cache) Put(endpoint, params string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey{endpoint, params}] = cacheEntry{value: value, storedAt: c.now()}
	c.placeholders[endpoint] = value
}

// Placeholder returns the most recently stored value for endpoint.
// Invalidation keeps it so prior rows stay visible during the refetch.
func (c *Cache) Placeholder(endpoint string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.placeholders[endpoint]
	return v, ok
}

// InvalidateEndpoint drops every cached page of endpoint and returns how
// many were removed
func (c *Cache) InvalidateEndpoint(endpoint string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k := range c.entries {
		if k.endpoint == endpoint {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of cached pages, stale or not
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
