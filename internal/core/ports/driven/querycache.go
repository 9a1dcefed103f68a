package driven

import (
	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// QueryCache maps cache keys to previously generated queries.
//
// Implementations must support concurrent Lookup/Store safely: a Store
// racing a Lookup for the same key leaves the cache holding either the old
// or the new entry, never a partial one. Last-writer-wins is acceptable.
// Expiry is checked lazily at Lookup rather than by a background sweep.
type QueryCache interface {
	// Lookup returns the live entry for key, or domain.ErrCacheMiss when
	// no entry exists or the entry has expired.
	Lookup(key domain.CacheKey) (*domain.CacheEntry, error)

	// Store replaces the entry for key wholesale.
	Store(key domain.CacheKey, entry domain.CacheEntry) error

	// InvalidateAll drops every entry.
	InvalidateAll() error
}
