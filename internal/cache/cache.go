// Package cache provides a generic in-process key/value cache with
// per-entry TTL and size-bounded LRU eviction. It backs the deck-file
// extractor, keyed by file fingerprints; the query engine keeps its own
// coarser path-keyed record cache with different invalidation semantics
// (see usecase/query), and the two are deliberately not unified.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultTTL is the entry lifetime used when none is configured.
const DefaultTTL = time.Hour

// DefaultCapacity is the entry limit used when none is configured.
const DefaultCapacity = 100

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Stats is a point-in-time snapshot of cache occupancy.
type Stats struct {
	Total      int           `json:"total_entries"`
	Expired    int           `json:"expired_entries"`
	Active     int           `json:"active_entries"`
	Capacity   int           `json:"capacity"`
	DefaultTTL time.Duration `json:"default_ttl"`
}

// Cache is an expiring, LRU-evicting store. Every operation is serialized
// behind one mutex: eviction is a find-minimum-then-delete-then-insert
// sequence and must not interleave with concurrent reads.
type Cache[V any] struct {
	mu         sync.Mutex
	lru        *simplelru.LRU[string, entry[V]]
	defaultTTL time.Duration
	capacity   int
	now        func() time.Time
}

// New creates a cache. Non-positive capacity or TTL fall back to the
// package defaults.
func New[V any](capacity int, defaultTTL time.Duration) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	// error is only possible for non-positive size, guarded above
	lru, _ := simplelru.NewLRU[string, entry[V]](capacity, nil)
	return &Cache[V]{
		lru:        lru,
		defaultTTL: defaultTTL,
		capacity:   capacity,
		now:        time.Now,
	}
}

// Get returns the cached value for key. An entry past its expiry is
// deleted and reported as a miss. A hit refreshes the entry's recency
// but never its expiry.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Put stores value under key with the default TTL.
func (c *Cache[V]) Put(key string, value V) {
	c.PutTTL(key, value, c.defaultTTL)
}

// PutTTL stores value under key with an explicit TTL, overwriting any
// previous entry. Inserting a new key at capacity evicts the
// least-recently-accessed entry first.
func (c *Cache[V]) PutTTL(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, entry[V]{value: value, expiresAt: c.now().Add(ttl)})
}

// Invalidate removes key, reporting whether an entry existed.
func (c *Cache[V]) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// CleanupExpired removes every entry past its expiry and returns the
// number removed.
func (c *Cache[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && now.After(e.expiresAt) {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

// Stats returns current occupancy counters. Expired entries are counted,
// not removed; see CleanupExpired.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expired := 0
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok && now.After(e.expiresAt) {
			expired++
		}
	}
	total := c.lru.Len()
	return Stats{
		Total:      total,
		Expired:    expired,
		Active:     total - expired,
		Capacity:   c.capacity,
		DefaultTTL: c.defaultTTL,
	}
}
