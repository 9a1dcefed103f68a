// Package sqlite provides a persistent query cache backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO. It is the optional external-store variant of the
// query cache: entries survive process restarts, which matters for
// short-lived CLI invocations where an in-memory cache never gets warm.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

// Ensure QueryCache implements the interface.
var _ driven.QueryCache = (*QueryCache)(nil)

// DefaultTTL is how long an entry stays live without regeneration.
const DefaultTTL = time.Hour

const schema = `
CREATE TABLE IF NOT EXISTS query_cache (
	question_hash INTEGER NOT NULL,
	result_limit  INTEGER NOT NULL,
	query         TEXT NOT NULL,
	generated_at  INTEGER NOT NULL,
	source_question TEXT NOT NULL,
	schema_fingerprint INTEGER NOT NULL,
	PRIMARY KEY (question_hash, result_limit)
)`

// QueryCache is a SQLite-backed query cache. Expiry is lazy: expired rows
// are deleted at lookup time.
type QueryCache struct {
	db   *sql.DB
	path string
	ttl  time.Duration

	now func() time.Time
}

// NewQueryCache opens (or creates) the cache database. If dataDir is
// empty, defaults to ~/.clinigraph/data. ttl <= 0 uses DefaultTTL.
func NewQueryCache(dataDir string, ttl time.Duration) (*QueryCache, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".clinigraph", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	dbPath := filepath.Join(dataDir, "querycache.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating query_cache table: %w", err)
	}

	return &QueryCache{db: db, path: dbPath, ttl: ttl, now: time.Now}, nil
}

// Lookup returns the live entry for key, deleting it when expired.
func (c *QueryCache) Lookup(key domain.CacheKey) (*domain.CacheEntry, error) {
	row := c.db.QueryRow(
		`SELECT query, generated_at, source_question, schema_fingerprint
		 FROM query_cache WHERE question_hash = ? AND result_limit = ?`,
		int64(key.QuestionHash), key.Limit,
	)

	var entry domain.CacheEntry
	var generatedAt int64
	var fingerprint int64
	err := row.Scan(&entry.Query, &generatedAt, &entry.SourceQuestion, &fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("lookup cache entry: %w", err)
	}

	entry.GeneratedAt = time.Unix(generatedAt, 0)
	entry.SchemaFingerprint = uint64(fingerprint)

	if entry.Expired(c.now(), c.ttl) {
		_, _ = c.db.Exec(
			`DELETE FROM query_cache WHERE question_hash = ? AND result_limit = ? AND generated_at = ?`,
			int64(key.QuestionHash), key.Limit, generatedAt,
		)
		return nil, domain.ErrCacheMiss
	}
	return &entry, nil
}

// Store replaces the entry for key wholesale.
func (c *QueryCache) Store(key domain.CacheKey, entry domain.CacheEntry) error {
	_, err := c.db.Exec(
		`INSERT INTO query_cache
		 (question_hash, result_limit, query, generated_at, source_question, schema_fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(question_hash, result_limit) DO UPDATE SET
		 query = excluded.query,
		 generated_at = excluded.generated_at,
		 source_question = excluded.source_question,
		 schema_fingerprint = excluded.schema_fingerprint`,
		int64(key.QuestionHash), key.Limit, entry.Query,
		entry.GeneratedAt.Unix(), entry.SourceQuestion, int64(entry.SchemaFingerprint),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// InvalidateAll drops every entry.
func (c *QueryCache) InvalidateAll() error {
	if _, err := c.db.Exec(`DELETE FROM query_cache`); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *QueryCache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *QueryCache) Close() error {
	return c.db.Close()
}
