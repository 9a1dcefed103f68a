package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
	"github.com/clinigraph/clinigraph/internal/core/ports/driving"
	"github.com/clinigraph/clinigraph/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService runs the full question-answer cycle:
// schema -> cache lookup -> [miss] generate -> validate -> execute ->
// normalize. A cache hit whose entry was validated against the current
// schema skips generation and validation entirely.
type AnswerService struct {
	schema    *SchemaService
	generator *Generator
	store     driven.GraphStore
	cache     driven.QueryCache
	audit     driven.AuditSink
	prompts   driven.PromptStore
}

// NewAnswerService creates an answer service. cache and audit are optional.
func NewAnswerService(
	schema *SchemaService,
	generator *Generator,
	store driven.GraphStore,
	cache driven.QueryCache,
) *AnswerService {
	return &AnswerService{
		schema:    schema,
		generator: generator,
		store:     store,
		cache:     cache,
	}
}

// SetAuditSink sets the append-only event sink receiving cycle progress.
func (s *AnswerService) SetAuditSink(sink driven.AuditSink) {
	s.audit = sink
}

// SetPromptStore sets the source of the narrative introduction template.
func (s *AnswerService) SetPromptStore(prompts driven.PromptStore) {
	s.prompts = prompts
}

// Answer runs one question-answer cycle.
func (s *AnswerService) Answer(ctx context.Context, question string, limit int) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = domain.DefaultAnswerLimit
	}

	cycleID := uuid.NewString()
	logger.Section("Natural Language Query")
	logger.Info("Question: %q (limit %d)", question, limit)

	answer, err := s.answer(ctx, cycleID, question, limit)
	if err != nil {
		s.emit(cycleID, domain.StageFailed, question, err.Error())
		return nil, err
	}
	s.emit(cycleID, domain.StageCompleted, question, answer.Query)
	return answer, nil
}

func (s *AnswerService) answer(
	ctx context.Context, cycleID, question string, limit int,
) (*domain.Answer, error) {
	schema, err := s.schema.Summary(ctx)
	if err != nil {
		return nil, err
	}
	fingerprint := schema.Fingerprint()

	query, cacheHit := s.lookupCached(cycleID, question, limit, fingerprint)
	if !cacheHit {
		candidate, err := s.generator.Generate(ctx, question, schema, limit)
		if err != nil {
			return nil, err
		}
		s.emit(cycleID, domain.StageGeneration, question, candidate)

		query, err = ValidateQuery(candidate, limit)
		if err != nil {
			s.emit(cycleID, domain.StageValidation, question, err.Error())
			return nil, err
		}
		s.emit(cycleID, domain.StageValidation, question, "accepted")

		s.storeCached(question, limit, query, fingerprint)
	}

	rows, err := s.executeAndNormalize(ctx, cycleID, question, query, limit)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Question: question,
		Query:    query,
		Rows:     rows,
		Count:    len(rows),
		CacheHit: cacheHit,
		Intro:    s.narrativeIntro(question),
	}, nil
}

// narrativeIntro formats the narrative introduction template with the
// question. Empty when no prompt store is wired or the template fails to
// load; the renderer falls back to a question heading.
func (s *AnswerService) narrativeIntro(question string) string {
	if s.prompts == nil {
		return ""
	}
	tmpl, err := s.prompts.Load(driven.PromptNarrative)
	if err != nil || tmpl == "" {
		return ""
	}
	return fmt.Sprintf(tmpl, question)
}

// lookupCached returns a previously validated query for this question, or
// "" on miss. An entry validated against a different schema fingerprint is
// re-validated before reuse; if re-validation fails the entry is treated
// as a miss.
func (s *AnswerService) lookupCached(
	cycleID, question string, limit int, fingerprint uint64,
) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	key := domain.NewCacheKey(question, limit)
	entry, err := s.cache.Lookup(key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("Cache lookup failed: %v", err)
		}
		s.emit(cycleID, domain.StageCacheLookup, question, "miss")
		return "", false
	}

	if entry.SchemaFingerprint != fingerprint {
		logger.Debug("Cache entry has stale schema fingerprint, re-validating")
		if _, err := ValidateQuery(entry.Query, limit); err != nil {
			s.emit(cycleID, domain.StageCacheLookup, question, "stale entry rejected")
			return "", false
		}
	}

	logger.Info("Cache hit, skipping generation")
	s.emit(cycleID, domain.StageCacheLookup, question, "hit")
	return entry.Query, true
}

// storeCached records a validated query. Non-cacheable questions are
// refused here, at store time, regardless of generation success.
func (s *AnswerService) storeCached(question string, limit int, query string, fingerprint uint64) {
	if s.cache == nil {
		return
	}
	if !domain.IsCacheable(question) {
		logger.Debug("Question contains relative-time vocabulary, not caching")
		return
	}

	key := domain.NewCacheKey(question, limit)
	entry := domain.CacheEntry{
		Query:             query,
		GeneratedAt:       time.Now(),
		SourceQuestion:    question,
		SchemaFingerprint: fingerprint,
	}
	if err := s.cache.Store(key, entry); err != nil {
		logger.Warn("Cache store failed: %v", err)
	}
}

// executeAndNormalize runs the validated query read-only and rewrites the
// raw rows into encoding-neutral primitives.
func (s *AnswerService) executeAndNormalize(
	ctx context.Context, cycleID, question, query string, limit int,
) ([]domain.Row, error) {
	if s.store == nil {
		return nil, domain.NewTaxonomyError(domain.KindExecution,
			"graph store not configured", domain.ErrStoreUnavailable)
	}

	rs, err := s.store.ExecuteRead(ctx, query, nil)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, context.DeadlineExceeded) {
			kind = domain.KindTimeout
		}
		s.emit(cycleID, domain.StageExecution, question, err.Error())
		return nil, domain.NewTaxonomyError(kind, "query execution failed", err)
	}

	// The validator guarantees a LIMIT, so exceeding the ceiling means the
	// bound was bypassed. Surface it rather than truncating.
	if rs.Len() > limit {
		s.emit(cycleID, domain.StageExecution, question,
			fmt.Sprintf("%d rows exceeds limit %d", rs.Len(), limit))
		return nil, domain.NewTaxonomyError(domain.KindResultTooLarge,
			fmt.Sprintf("query returned %d rows, limit is %d", rs.Len(), limit), nil)
	}

	logger.Info("Execution returned %d rows", rs.Len())
	s.emit(cycleID, domain.StageExecution, question, fmt.Sprintf("%d rows", rs.Len()))

	return Normalize(rs)
}

// InvalidateCache drops every cached query.
func (s *AnswerService) InvalidateCache() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidateAll()
}

func (s *AnswerService) emit(cycleID string, stage domain.AuditStage, question, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Append(domain.AuditEvent{
		CycleID:  cycleID,
		Stage:    stage,
		Question: question,
		Detail:   detail,
		At:       time.Now(),
	})
}
