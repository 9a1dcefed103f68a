// Package memory provides an in-memory implementation of the query cache.
// This is the default cache: process-local, no persistence, safe for
// concurrent use.
package memory

import (
	"sync"
	"time"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

// Ensure QueryCache implements the interface.
var _ driven.QueryCache = (*QueryCache)(nil)

// DefaultTTL is how long an entry stays live without regeneration.
const DefaultTTL = time.Hour

// QueryCache is an in-memory query cache with lazy expiry: entries are
// checked against the TTL at lookup rather than by a background sweep,
// which keeps the cache a single concurrency domain.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[domain.CacheKey]domain.CacheEntry
	ttl     time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewQueryCache creates an in-memory cache. ttl <= 0 uses DefaultTTL.
func NewQueryCache(ttl time.Duration) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &QueryCache{
		entries: make(map[domain.CacheKey]domain.CacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns the live entry for key. Expired entries are evicted here.
func (c *QueryCache) Lookup(key domain.CacheKey) (*domain.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, domain.ErrCacheMiss
	}
	if entry.Expired(c.now(), c.ttl) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Store may have
		// replaced the entry with a fresh one.
		if current, ok := c.entries[key]; ok && current.Expired(c.now(), c.ttl) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, domain.ErrCacheMiss
	}
	return &entry, nil
}

// Store replaces the entry for key wholesale. Last writer wins.
func (c *QueryCache) Store(key domain.CacheKey, entry domain.CacheEntry) error {
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// InvalidateAll drops every entry.
func (c *QueryCache) InvalidateAll() error {
	c.mu.Lock()
	c.entries = make(map[domain.CacheKey]domain.CacheEntry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of entries, including any not yet lazily evicted.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
