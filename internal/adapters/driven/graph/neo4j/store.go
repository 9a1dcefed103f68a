// Package neo4j provides a GraphStore adapter backed by the Neo4j Bolt
// driver. All query execution runs in read-access sessions, so even a
// query that slips past the lexical read-only check cannot mutate the
// graph.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.GraphStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultDatabase     = "neo4j"
	DefaultQueryTimeout = 30 * time.Second
)

// Config holds connection settings for the Neo4j store.
type Config struct {
	// URI is the Bolt URI, e.g. "neo4j://localhost:7687" (required).
	URI string

	// Username and Password authenticate against the store.
	Username string
	Password string

	// Database is the target database name (default: neo4j).
	Database string

	// QueryTimeout bounds each outbound call (default: 30s). The caller's
	// context may impose a shorter deadline.
	QueryTimeout time.Duration
}

// Store is a read-only Neo4j-backed graph store.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	timeout  time.Duration
}

// NewStore creates a store and verifies nothing; connectivity is checked
// lazily by Ping or on first use.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j: URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: create driver: %w", err)
	}

	return &Store{
		driver:   driver,
		database: cfg.Database,
		timeout:  cfg.QueryTimeout,
	}, nil
}

// ExecuteRead runs a query in a read-access session and returns the rows
// with driver wrapper types unwrapped to native Go values.
func (s *Store) ExecuteRead(
	ctx context.Context, query string, params map[string]any,
) (*domain.ResultSet, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	rows, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]domain.Row, len(records))
		for i, rec := range records {
			values := make([]any, len(rec.Values))
			for j, v := range rec.Values {
				values[j] = unwrapValue(v)
			}
			out[i] = domain.Row{Keys: rec.Keys, Values: values}
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: execute read: %w", err)
	}

	return &domain.ResultSet{Rows: rows.([]domain.Row)}, nil
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j: ping: %w", err)
	}
	return nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
