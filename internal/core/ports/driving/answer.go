package driving

import (
	"context"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// AnswerService translates natural-language questions into graph queries,
// executes them, and returns normalized answers.
type AnswerService interface {
	// Answer runs one question-answer cycle. Failures carry a
	// domain.TaxonomyError kind.
	Answer(ctx context.Context, question string, limit int) (*domain.Answer, error)

	// InvalidateCache drops every cached query.
	InvalidateCache() error
}

// SchemaService exposes the schema summary to callers.
type SchemaService interface {
	// Summary returns the current schema snapshot, introspecting the
	// store when no fresh snapshot exists.
	Summary(ctx context.Context) (*domain.SchemaSummary, error)

	// Refresh discards the current snapshot and introspects again.
	Refresh(ctx context.Context) (*domain.SchemaSummary, error)
}
