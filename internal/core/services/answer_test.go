package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

func testStore() *mockGraphStore {
	return &mockGraphStore{
		summary: &domain.SchemaSummary{
			Labels: []domain.NodeLabel{
				{Name: "Patient", Properties: []domain.Property{{Name: "subject_id", Indexed: true}}},
			},
			CapturedAt: time.Now(),
		},
		resultSet: &domain.ResultSet{
			Rows: []domain.Row{
				{Keys: []string{"patients"}, Values: []any{int64(42)}},
			},
		},
	}
}

func newTestAnswerService(
	store *mockGraphStore, engine *mockGenEngine, cache *mockQueryCache,
) *AnswerService {
	schema := NewSchemaService(store, time.Hour)
	var svc *AnswerService
	if cache != nil {
		svc = NewAnswerService(schema, NewGenerator(engine), store, cache)
	} else {
		svc = NewAnswerService(schema, NewGenerator(engine), store, nil)
	}
	return svc
}

func TestAnswerService_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("full cycle", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10"}
		sink := &mockAuditSink{}
		svc := newTestAnswerService(store, engine, newMockQueryCache())
		svc.SetAuditSink(sink)

		answer, err := svc.Answer(ctx, "how many patients?", 10)

		require.NoError(t, err)
		assert.Equal(t, "how many patients?", answer.Question)
		assert.Contains(t, answer.Query, "MATCH (p:Patient)")
		assert.Equal(t, 1, answer.Count)
		assert.False(t, answer.CacheHit)
		assert.Equal(t, int64(42), answer.Rows[0].AsMap()["patients"])

		assert.Equal(t, []domain.AuditStage{
			domain.StageCacheLookup,
			domain.StageGeneration,
			domain.StageValidation,
			domain.StageExecution,
			domain.StageCompleted,
		}, sink.stages())
	})

	t.Run("narrative intro from prompt store", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10"}
		svc := newTestAnswerService(store, engine, nil)
		svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
			"narrative_intro": "The following results answer the question: %s",
		}})

		answer, err := svc.Answer(ctx, "how many patients?", 10)

		require.NoError(t, err)
		assert.Equal(t, "The following results answer the question: how many patients?", answer.Intro)
	})

	t.Run("no prompt store leaves intro empty", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10"}
		svc := newTestAnswerService(store, engine, nil)

		answer, err := svc.Answer(ctx, "how many patients?", 10)

		require.NoError(t, err)
		assert.Empty(t, answer.Intro)
	})

	t.Run("empty question rejected", func(t *testing.T) {
		svc := newTestAnswerService(testStore(), &mockGenEngine{}, nil)

		_, err := svc.Answer(ctx, "   ", 10)

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("zero limit uses default", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN p"}
		svc := newTestAnswerService(store, engine, nil)

		answer, err := svc.Answer(ctx, "patients", 0)

		require.NoError(t, err)
		assert.Contains(t, answer.Query, "LIMIT 10", "default limit is injected")
	})

	t.Run("cache hit skips generation", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10"}
		cache := newMockQueryCache()
		svc := newTestAnswerService(store, engine, cache)

		first, err := svc.Answer(ctx, "how many patients?", 10)
		require.NoError(t, err)
		assert.False(t, first.CacheHit)
		require.Equal(t, 1, engine.calls)

		second, err := svc.Answer(ctx, "How   many patients?", 10)
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
		assert.Equal(t, 1, engine.calls, "generation engine must not be called again")
		assert.Equal(t, first.Query, second.Query)
	})

	t.Run("relative-time question never stored", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN p LIMIT 10"}
		cache := newMockQueryCache()
		svc := newTestAnswerService(store, engine, cache)

		_, err := svc.Answer(ctx, "patients admitted today", 10)

		require.NoError(t, err)
		assert.Zero(t, cache.storeCalls)
		assert.Empty(t, cache.entries)
	})

	t.Run("mutating candidate rejected before execution", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) DETACH DELETE p"}
		svc := newTestAnswerService(store, engine, nil)

		_, err := svc.Answer(ctx, "delete everything", 10)

		require.Error(t, err)
		assert.Equal(t, domain.KindValidationRejected, domain.KindOf(err))
		assert.Zero(t, store.executeCalls, "rejected query must never execute")
	})

	t.Run("rejected query not cached", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "CREATE (p:Patient)"}
		cache := newMockQueryCache()
		svc := newTestAnswerService(store, engine, cache)

		_, err := svc.Answer(ctx, "add a patient", 10)

		require.Error(t, err)
		assert.Empty(t, cache.entries)
	})

	t.Run("result exceeding limit surfaces as too large", func(t *testing.T) {
		store := testStore()
		store.resultSet = &domain.ResultSet{
			Rows: []domain.Row{
				{Keys: []string{"n"}, Values: []any{int64(1)}},
				{Keys: []string{"n"}, Values: []any{int64(2)}},
				{Keys: []string{"n"}, Values: []any{int64(3)}},
			},
		}
		engine := &mockGenEngine{response: "MATCH (p) RETURN p.n AS n LIMIT 2"}
		svc := newTestAnswerService(store, engine, nil)

		_, err := svc.Answer(ctx, "values", 2)

		require.Error(t, err)
		assert.Equal(t, domain.KindResultTooLarge, domain.KindOf(err))
	})

	t.Run("execution deadline maps to timeout", func(t *testing.T) {
		store := testStore()
		store.execErr = context.DeadlineExceeded
		engine := &mockGenEngine{response: "MATCH (p) RETURN p LIMIT 10"}
		svc := newTestAnswerService(store, engine, nil)

		_, err := svc.Answer(ctx, "patients", 10)

		require.Error(t, err)
		assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
	})

	t.Run("failure emits failed audit stage", func(t *testing.T) {
		store := testStore()
		store.introErr = context.DeadlineExceeded
		engine := &mockGenEngine{}
		sink := &mockAuditSink{}
		svc := newTestAnswerService(store, engine, nil)
		svc.SetAuditSink(sink)

		_, err := svc.Answer(ctx, "patients", 10)

		require.Error(t, err)
		stages := sink.stages()
		require.NotEmpty(t, stages)
		assert.Equal(t, domain.StageFailed, stages[len(stages)-1])
	})
}

func TestAnswerService_StaleFingerprintRevalidates(t *testing.T) {
	ctx := context.Background()

	t.Run("valid stale entry reused", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{}
		cache := newMockQueryCache()
		svc := newTestAnswerService(store, engine, cache)

		key := domain.NewCacheKey("how many patients?", 10)
		cache.entries[key] = domain.CacheEntry{
			Query:             "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10",
			GeneratedAt:       time.Now(),
			SourceQuestion:    "how many patients?",
			SchemaFingerprint: 12345, // will not match the live schema
		}

		answer, err := svc.Answer(ctx, "how many patients?", 10)

		require.NoError(t, err)
		assert.True(t, answer.CacheHit)
		assert.Zero(t, engine.calls)
	})

	t.Run("invalid stale entry regenerated", func(t *testing.T) {
		store := testStore()
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN count(p) AS patients LIMIT 10"}
		cache := newMockQueryCache()
		svc := newTestAnswerService(store, engine, cache)

		key := domain.NewCacheKey("how many patients?", 10)
		cache.entries[key] = domain.CacheEntry{
			Query:             "MATCH (p:Patient) SET p.seen = true", // no longer passes validation
			GeneratedAt:       time.Now(),
			SourceQuestion:    "how many patients?",
			SchemaFingerprint: 12345,
		}

		answer, err := svc.Answer(ctx, "how many patients?", 10)

		require.NoError(t, err)
		assert.False(t, answer.CacheHit)
		assert.Equal(t, 1, engine.calls)
	})
}

func TestAnswerService_InvalidateCache(t *testing.T) {
	store := testStore()
	cache := newMockQueryCache()
	cache.entries[domain.NewCacheKey("q", 10)] = domain.CacheEntry{Query: "MATCH (n) RETURN n"}
	svc := newTestAnswerService(store, &mockGenEngine{}, cache)

	require.NoError(t, svc.InvalidateCache())
	assert.Empty(t, cache.entries)
}

func TestAnswerService_NoStoreConfigured(t *testing.T) {
	schema := NewSchemaService(testStore(), time.Hour)
	engine := &mockGenEngine{response: "MATCH (p) RETURN p LIMIT 10"}
	svc := NewAnswerService(schema, NewGenerator(engine), nil, nil)

	_, err := svc.Answer(context.Background(), "patients", 10)

	require.Error(t, err)
	assert.Equal(t, domain.KindExecution, domain.KindOf(err))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
