package domain

import (
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Row is a single heterogeneous record returned by the graph store.
// Keys preserve the column order of the query's RETURN clause; Values
// holds the corresponding values.
type Row struct {
	Keys   []string
	Values []any
}

// AsMap returns the row as a name-to-value mapping.
func (r Row) AsMap() map[string]any {
	m := make(map[string]any, len(r.Keys))
	for i, k := range r.Keys {
		if i < len(r.Values) {
			m[k] = r.Values[i]
		}
	}
	return m
}

// ResultSet is an ordered sequence of rows with count bounded by the
// configured ceiling. Scoped to a single question-answer cycle; never
// cached, because the underlying clinical data mutates independently of
// the query shape.
type ResultSet struct {
	Rows []Row
}

// Len returns the row count.
func (rs *ResultSet) Len() int {
	return len(rs.Rows)
}

// CacheKey identifies a (question, limit) pair. Derived deterministically
// from the normalized question, so textually different questions that
// normalize identically collide by design.
type CacheKey struct {
	QuestionHash uint64
	Limit        int
}

// NormalizeQuestion lowercases, trims, and collapses internal whitespace.
func NormalizeQuestion(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// NewCacheKey derives the cache key for a question and limit.
func NewCacheKey(question string, limit int) CacheKey {
	return CacheKey{
		QuestionHash: xxhash.Sum64String(NormalizeQuestion(question)),
		Limit:        limit,
	}
}

// relativeTimeVocabulary marks questions whose correct answer depends on
// the instant they are asked. Such questions are never cached.
var relativeTimeVocabulary = []string{
	"now",
	"today",
	"tonight",
	"current",
	"currently",
	"yesterday",
	"tomorrow",
	"this week",
	"this month",
	"this year",
	"recent",
	"recently",
	"latest",
	"last week",
	"last month",
	"last year",
}

// IsCacheable reports whether a question may be stored in the query cache.
// Enforced at store time, not merely at lookup time. Matching is
// punctuation-insensitive, so "admitted today?" is caught.
func IsCacheable(question string) bool {
	var b strings.Builder
	for _, r := range strings.ToLower(question) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	normalized := " " + strings.Join(strings.Fields(b.String()), " ") + " "
	for _, word := range relativeTimeVocabulary {
		if strings.Contains(normalized, " "+word+" ") {
			return false
		}
	}
	return true
}

// CacheEntry is a previously generated and validated query. Entries are
// replaced wholesale on regeneration, never partially updated.
type CacheEntry struct {
	// Query is the validated query string.
	Query string

	// GeneratedAt is when the generation engine produced the query.
	GeneratedAt time.Time

	// SourceQuestion is the original (un-normalized) question text.
	SourceQuestion string

	// SchemaFingerprint is the schema the query was validated against.
	// A hit with a stale fingerprint is re-validated before execution.
	SchemaFingerprint uint64
}

// Expired reports whether the entry has outlived ttl at the given instant.
func (e *CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.GeneratedAt) > ttl
}
