// Package openai provides a query-generation adapter using the OpenAI API.
package openai

import (
	"context"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/clinigraph/clinigraph/internal/core/ports/driven"
)

// Ensure Generator implements the interfaces.
var (
	_ driven.QueryGenerator = (*Generator)(nil)
	_ driven.Embedder       = (*Generator)(nil)
)

// Default configuration values.
const (
	DefaultModel   = "gpt-4.1-nano"
	DefaultTimeout = 60 * time.Second

	// EmbeddingModel produces the vectors stored in the note embeddings
	// index; query embeddings must come from the same model.
	EmbeddingModel = "text-embedding-3-small"

	// DefaultRequestsPerMinute caps outbound generation calls so a burst
	// of uncached questions cannot run away against the engine.
	DefaultRequestsPerMinute = 30
)

// Config holds configuration for the OpenAI generation adapter.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL. Can be changed for Azure OpenAI or
	// compatible APIs. Empty uses the official endpoint.
	BaseURL string

	// Model is the model to use (default: gpt-4.1-nano).
	Model string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// RequestsPerMinute caps the outbound call rate (default: 30).
	RequestsPerMinute int
}

// Generator calls the OpenAI chat completions API to turn prompts into
// candidate queries.
type Generator struct {
	client  *goopenai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
}

// NewGenerator creates a new OpenAI-backed query generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = DefaultRequestsPerMinute
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:  goopenai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
	}, nil
}

// Complete sends the messages to the chat completions endpoint and
// returns the raw response text.
func (g *Generator) Complete(
	ctx context.Context, messages []driven.ChatMessage, opts driven.CompletionOptions,
) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("openai: rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	chatMessages := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = goopenai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    chatMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no response choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for the given text.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai: rate limit wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(EmbeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}

	return resp.Data[0].Embedding, nil
}

// ModelName returns the name of the model being used.
func (g *Generator) ModelName() string {
	return g.model
}

// Ping validates the API key by listing models without running inference.
func (g *Generator) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	return nil
}
