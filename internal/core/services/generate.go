package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clinigraph/clinigraph/internal/core/domain"
	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
	"github.com/clinigraph/clinigraph/internal/logger"
)

// Generation request tuning, carried over from the deployed service.
const (
	generateMaxTokens   = 500
	generateTemperature = 0.1
)

// defaultQuerySystemPrompt is the fallback when no PromptStore is configured.
const defaultQuerySystemPrompt = `You are a Neo4j Cypher query expert specialized in medical data.
You will be given a database schema and a natural language question about medical/EHR data.
Generate a valid read-only Cypher query that answers the question. Only return the Cypher query, no explanations.

Important guidelines:
- Never use CREATE, DELETE, SET, MERGE, REMOVE or any other write clause
- Always include a LIMIT clause to prevent large result sets
- Prefer WHERE predicates on indexed properties before unindexed ones
- Use proper node labels and relationship types from the schema
- Return meaningful data that answers the question
- For text searches in notes, use case-insensitive CONTAINS`

// Generator combines the schema summary and a question into a generation
// request, invokes the query-generation provider, and extracts a single
// candidate query from the response.
type Generator struct {
	engine      driven.QueryGenerator
	promptStore driven.PromptStore
}

// NewGenerator creates a generator over the given provider.
func NewGenerator(engine driven.QueryGenerator) *Generator {
	return &Generator{engine: engine}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the generator uses the hardcoded default system prompt.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.promptStore = store
}

// Generate asks the engine for a query answering the question against the
// given schema. The returned candidate has not been validated.
func (g *Generator) Generate(
	ctx context.Context, question string, schema *domain.SchemaSummary, limit int,
) (string, error) {
	if g.engine == nil {
		return "", domain.NewTaxonomyError(domain.KindGeneration,
			"generation engine not configured", domain.ErrGeneratorUnavailable)
	}

	system := defaultQuerySystemPrompt
	if g.promptStore != nil {
		if p, err := g.promptStore.Load(driven.PromptQuerySystem); err == nil && p != "" {
			system = p
		}
	}

	user := fmt.Sprintf("Database Schema:\n%s\n\nQuestion: %s\n\nGenerate a Cypher query with LIMIT %d:",
		schema.Render(), question, limit)

	messages := []driven.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}

	logger.Debug("Generation request: model=%s, question=%q", g.engine.ModelName(), question)
	response, err := g.engine.Complete(ctx, messages, driven.CompletionOptions{
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
	})
	if err != nil {
		kind := domain.KindGeneration
		if errors.Is(err, context.DeadlineExceeded) {
			kind = domain.KindTimeout
		}
		return "", domain.NewTaxonomyError(kind, "generation engine call failed", err)
	}

	query, err := ExtractQuery(response)
	if err != nil {
		return "", domain.NewTaxonomyError(domain.KindGeneration,
			"no single query could be extracted from the response", err)
	}

	logger.Debug("Candidate query: %s", query)
	return query, nil
}

// ExtractQuery pulls exactly one query out of a generation response.
//
// When the response contains fenced code blocks, exactly one block is
// required: multi-block responses fail loudly rather than picking the
// first candidate, since executing the wrong block risks an unintended
// traversal. Responses without fences are taken verbatim.
func ExtractQuery(response string) (string, error) {
	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return "", fmt.Errorf("empty response")
	}

	if !strings.Contains(trimmed, "```") {
		return trimmed, nil
	}

	var blocks []string
	rest := trimmed
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			return "", fmt.Errorf("unterminated code fence")
		}
		block := rest[:end]
		rest = rest[end+3:]

		// Drop a language tag on the opening fence line.
		if nl := strings.IndexByte(block, '\n'); nl >= 0 {
			firstLine := strings.TrimSpace(block[:nl])
			if firstLine == "cypher" || firstLine == "sql" || firstLine == "" {
				block = block[nl+1:]
			}
		} else {
			block = strings.TrimPrefix(block, "cypher")
		}

		if b := strings.TrimSpace(block); b != "" {
			blocks = append(blocks, b)
		}
	}

	switch len(blocks) {
	case 0:
		return "", fmt.Errorf("no query block in response")
	case 1:
		return blocks[0], nil
	default:
		return "", fmt.Errorf("%d candidate query blocks in response, expected exactly one", len(blocks))
	}
}
