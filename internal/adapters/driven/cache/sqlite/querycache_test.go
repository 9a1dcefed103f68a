package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

func newTestCache(t *testing.T) *QueryCache {
	t.Helper()
	cache, err := NewQueryCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func testEntry(generatedAt time.Time) domain.CacheEntry {
	return domain.CacheEntry{
		Query:             "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10",
		GeneratedAt:       generatedAt,
		SourceQuestion:    "How many patients are there?",
		SchemaFingerprint: 12345,
	}
}

func TestQueryCacheImplementsInterface(t *testing.T) {
	var _ driven.QueryCache = newTestCache(t)
}

func TestNewQueryCache_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()

	cache, err := NewQueryCache(dir, time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	assert.Equal(t, filepath.Join(dir, "querycache.db"), cache.Path())
	assert.FileExists(t, cache.Path())
}

func TestQueryCache_StoreAndLookup(t *testing.T) {
	cache := newTestCache(t)
	key := domain.CacheKey{QuestionHash: 42, Limit: 10}

	_, err := cache.Lookup(key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	entry := testEntry(time.Now())
	require.NoError(t, cache.Store(key, entry))

	got, err := cache.Lookup(key)
	require.NoError(t, err)
	assert.Equal(t, entry.Query, got.Query)
	assert.Equal(t, entry.SourceQuestion, got.SourceQuestion)
	assert.Equal(t, entry.SchemaFingerprint, got.SchemaFingerprint)
	// Seconds precision survives the round trip.
	assert.Equal(t, entry.GeneratedAt.Unix(), got.GeneratedAt.Unix())
}

func TestQueryCache_EntriesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	key := domain.CacheKey{QuestionHash: 42, Limit: 10}

	cache, err := NewQueryCache(dir, time.Hour)
	require.NoError(t, err)
	require.NoError(t, cache.Store(key, testEntry(time.Now())))
	require.NoError(t, cache.Close())

	reopened, err := NewQueryCache(dir, time.Hour)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Lookup(key)
	require.NoError(t, err)
	assert.Equal(t, "How many patients are there?", got.SourceQuestion)
}

func TestQueryCache_ExpiredEntryDeleted(t *testing.T) {
	cache := newTestCache(t)
	key := domain.CacheKey{QuestionHash: 42, Limit: 10}

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Store(key, testEntry(base)))

	cache.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err := cache.Lookup(key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	// The row is deleted, not just filtered: a fresh lookup with a
	// permissive clock still misses.
	cache.now = time.Now
	cache.ttl = 365 * 24 * time.Hour
	_, err = cache.Lookup(key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestQueryCache_UpsertReplacesEntry(t *testing.T) {
	cache := newTestCache(t)
	key := domain.CacheKey{QuestionHash: 42, Limit: 10}

	first := testEntry(time.Now())
	require.NoError(t, cache.Store(key, first))

	second := first
	second.Query = "MATCH (a:Admission) RETURN count(a) AS admissions LIMIT 10"
	second.SchemaFingerprint = 99999
	require.NoError(t, cache.Store(key, second))

	got, err := cache.Lookup(key)
	require.NoError(t, err)
	assert.Equal(t, second.Query, got.Query)
	assert.Equal(t, uint64(99999), got.SchemaFingerprint)
}

func TestQueryCache_LimitDistinguishesRows(t *testing.T) {
	cache := newTestCache(t)

	ten := testEntry(time.Now())
	twentyFive := ten
	twentyFive.Query = "MATCH (p:Patient) RETURN p LIMIT 25"
	require.NoError(t, cache.Store(domain.CacheKey{QuestionHash: 42, Limit: 10}, ten))
	require.NoError(t, cache.Store(domain.CacheKey{QuestionHash: 42, Limit: 25}, twentyFive))

	got, err := cache.Lookup(domain.CacheKey{QuestionHash: 42, Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, twentyFive.Query, got.Query)
}

func TestQueryCache_InvalidateAll(t *testing.T) {
	cache := newTestCache(t)
	for i := uint64(0); i < 3; i++ {
		require.NoError(t, cache.Store(domain.CacheKey{QuestionHash: i, Limit: 10}, testEntry(time.Now())))
	}

	require.NoError(t, cache.InvalidateAll())

	for i := uint64(0); i < 3; i++ {
		_, err := cache.Lookup(domain.CacheKey{QuestionHash: i, Limit: 10})
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	}
}

func TestQueryCache_LargeHashRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	// Hashes above math.MaxInt64 must survive the signed column.
	key := domain.CacheKey{QuestionHash: ^uint64(0), Limit: 10}

	entry := testEntry(time.Now())
	entry.SchemaFingerprint = ^uint64(0) - 7
	require.NoError(t, cache.Store(key, entry))

	got, err := cache.Lookup(key)
	require.NoError(t, err)
	assert.Equal(t, entry.SchemaFingerprint, got.SchemaFingerprint)
}
