package driven

import (
	"context"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// GraphStore provides read access to the clinical property graph.
//
// Implementations must execute queries in a read-only session regardless
// of query content - the lexical read-only check in the validator is not
// the last line of defense.
type GraphStore interface {
	// ExecuteRead runs a read query with the given parameters and returns
	// the raw rows. Store-specific wrapper types (driver temporal values,
	// nodes, relationships) are unwrapped to native Go values at this
	// boundary; encoding-neutral normalization happens in core.
	ExecuteRead(ctx context.Context, query string, params map[string]any) (*domain.ResultSet, error)

	// IntrospectSchema returns the node labels, relationship types with
	// endpoints, and per-property index flags currently in the store.
	IntrospectSchema(ctx context.Context) (*domain.SchemaSummary, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
