package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

func TestExtractQuery_NoFencesTakenVerbatim(t *testing.T) {
	query, err := ExtractQuery("MATCH (p:Patient) RETURN p LIMIT 10")

	require.NoError(t, err)
	assert.Equal(t, "MATCH (p:Patient) RETURN p LIMIT 10", query)
}

func TestExtractQuery_SingleFencedBlock(t *testing.T) {
	response := "Here is the query:\n```cypher\nMATCH (p:Patient) RETURN p LIMIT 10\n```\nDone."

	query, err := ExtractQuery(response)

	require.NoError(t, err)
	assert.Equal(t, "MATCH (p:Patient) RETURN p LIMIT 10", query)
}

func TestExtractQuery_StripsLanguageTags(t *testing.T) {
	for _, tag := range []string{"cypher", "sql", ""} {
		response := "```" + tag + "\nMATCH (p) RETURN p\n```"
		query, err := ExtractQuery(response)
		require.NoError(t, err, "tag %q", tag)
		assert.Equal(t, "MATCH (p) RETURN p", query, "tag %q", tag)
	}
}

func TestExtractQuery_MultipleBlocksFailLoudly(t *testing.T) {
	response := "Either:\n```cypher\nMATCH (a) RETURN a\n```\nor:\n```cypher\nMATCH (b) RETURN b\n```"

	_, err := ExtractQuery(response)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected exactly one")
}

func TestExtractQuery_EmptyResponse(t *testing.T) {
	_, err := ExtractQuery("   \n ")
	assert.Error(t, err)
}

func TestExtractQuery_EmptyFence(t *testing.T) {
	_, err := ExtractQuery("```cypher\n\n```")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no query block")
}

func TestExtractQuery_UnterminatedFence(t *testing.T) {
	_, err := ExtractQuery("```cypher\nMATCH (p) RETURN p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()
	schema := &domain.SchemaSummary{
		Labels: []domain.NodeLabel{
			{Name: "Patient", Properties: []domain.Property{{Name: "subject_id", Indexed: true}}},
		},
	}

	t.Run("builds request from schema and question", func(t *testing.T) {
		engine := &mockGenEngine{response: "MATCH (p:Patient) RETURN p LIMIT 7"}
		gen := NewGenerator(engine)

		query, err := gen.Generate(ctx, "how many patients?", schema, 7)

		require.NoError(t, err)
		assert.Equal(t, "MATCH (p:Patient) RETURN p LIMIT 7", query)

		require.Len(t, engine.lastMessages, 2)
		assert.Equal(t, "system", engine.lastMessages[0].Role)
		assert.Contains(t, engine.lastMessages[0].Content, "read-only")
		assert.Equal(t, "user", engine.lastMessages[1].Role)
		assert.Contains(t, engine.lastMessages[1].Content, "subject_id (indexed)")
		assert.Contains(t, engine.lastMessages[1].Content, "how many patients?")
		assert.Contains(t, engine.lastMessages[1].Content, "LIMIT 7")
		assert.Equal(t, generateMaxTokens, engine.lastOpts.MaxTokens)
		assert.InDelta(t, generateTemperature, engine.lastOpts.Temperature, 0.001)
	})

	t.Run("nil engine fails with generation kind", func(t *testing.T) {
		gen := NewGenerator(nil)

		_, err := gen.Generate(ctx, "test", schema, 10)

		require.Error(t, err)
		assert.Equal(t, domain.KindGeneration, domain.KindOf(err))
		assert.ErrorIs(t, err, domain.ErrGeneratorUnavailable)
	})

	t.Run("engine failure carries generation kind", func(t *testing.T) {
		engine := &mockGenEngine{err: errors.New("rate limited")}
		gen := NewGenerator(engine)

		_, err := gen.Generate(ctx, "test", schema, 10)

		require.Error(t, err)
		assert.Equal(t, domain.KindGeneration, domain.KindOf(err))
	})

	t.Run("deadline exceeded maps to timeout kind", func(t *testing.T) {
		engine := &mockGenEngine{err: context.DeadlineExceeded}
		gen := NewGenerator(engine)

		_, err := gen.Generate(ctx, "test", schema, 10)

		require.Error(t, err)
		assert.Equal(t, domain.KindTimeout, domain.KindOf(err))
	})

	t.Run("multi-block response fails generation", func(t *testing.T) {
		engine := &mockGenEngine{
			response: "```cypher\nMATCH (a) RETURN a\n```\n```cypher\nMATCH (b) RETURN b\n```",
		}
		gen := NewGenerator(engine)

		_, err := gen.Generate(ctx, "test", schema, 10)

		require.Error(t, err)
		assert.Equal(t, domain.KindGeneration, domain.KindOf(err))
	})

	t.Run("prompt store overrides system prompt", func(t *testing.T) {
		engine := &mockGenEngine{response: "MATCH (p) RETURN p LIMIT 1"}
		gen := NewGenerator(engine)
		gen.SetPromptStore(&mockPromptStore{
			prompts: map[string]string{driven.PromptQuerySystem: "custom prompt"},
		})

		_, err := gen.Generate(ctx, "test", schema, 1)

		require.NoError(t, err)
		assert.Equal(t, "custom prompt", engine.lastMessages[0].Content)
	})

	t.Run("failing prompt store falls back to default", func(t *testing.T) {
		engine := &mockGenEngine{response: "MATCH (p) RETURN p LIMIT 1"}
		gen := NewGenerator(engine)
		gen.SetPromptStore(&mockPromptStore{err: errors.New("disk gone")})

		_, err := gen.Generate(ctx, "test", schema, 1)

		require.NoError(t, err)
		assert.Contains(t, engine.lastMessages[0].Content, "Cypher")
	})
}
