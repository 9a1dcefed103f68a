package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/logger"
)

// Ensure SchemaService implements the interface.
var _ driving.SchemaService = (*SchemaService)(nil)

// DefaultSchemaStaleness is how long a snapshot is served before the next
// Summary call introspects again.
const DefaultSchemaStaleness = 15 * time.Minute

// SchemaService produces and caches immutable schema snapshots.
// A refresh builds a new snapshot rather than mutating the old one, so
// concurrent readers never observe a half-updated schema.
type SchemaService struct {
	store     driven.GraphStore
	staleness time.Duration

	mu       sync.RWMutex
	snapshot *domain.SchemaSummary
}

// NewSchemaService creates a schema service over the given store.
// staleness <= 0 uses DefaultSchemaStaleness.
func NewSchemaService(store driven.GraphStore, staleness time.Duration) *SchemaService {
	if staleness <= 0 {
		staleness = DefaultSchemaStaleness
	}
	return &SchemaService{store: store, staleness: staleness}
}

// Summary returns the current snapshot, introspecting the store when none
// exists or the configured staleness interval has elapsed.
func (s *SchemaService) Summary(ctx context.Context) (*domain.SchemaSummary, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap != nil && time.Since(snap.CapturedAt) <= s.staleness {
		return snap, nil
	}

	return s.Refresh(ctx)
}

// Refresh discards the current snapshot and introspects again.
func (s *SchemaService) Refresh(ctx context.Context) (*domain.SchemaSummary, error) {
	if s.store == nil {
		return nil, domain.NewTaxonomyError(domain.KindIntrospection,
			"graph store not configured", domain.ErrStoreUnavailable)
	}

	logger.Debug("Introspecting graph schema")
	snap, err := s.store.IntrospectSchema(ctx)
	if err != nil {
		// Keep serving the stale snapshot to readers; only the refresh fails.
		return nil, domain.NewTaxonomyError(domain.KindIntrospection,
			"schema introspection failed", err)
	}
	if len(snap.Labels) == 0 && len(snap.Relationships) == 0 {
		return nil, domain.NewTaxonomyError(domain.KindIntrospection,
			"store returned an empty schema", fmt.Errorf("no labels or relationship types"))
	}

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	logger.Info("Schema snapshot: %d labels, %d relationship types",
		len(snap.Labels), len(snap.Relationships))
	return snap, nil
}
