package driven

import "context"

// ChatMessage represents a single message in a generation request.
type ChatMessage struct {
	// Role is one of "system" or "user".
	Role string

	// Content is the message text.
	Content string
}

// CompletionOptions configures a generation request.
type CompletionOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float32
}

// QueryGenerator is the pluggable query-generation provider: anything that
// can turn a prompt into free-form text containing a candidate query.
// The default implementation calls an LLM completion API; rule-based or
// alternative providers can be substituted without touching the validator,
// executor, or normalizer.
type QueryGenerator interface {
	// Complete sends the messages to the generation engine and returns its
	// raw text response. The call must respect ctx deadlines.
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error)

	// ModelName returns the name of the underlying model or provider.
	ModelName() string

	// Ping validates the engine is reachable without running inference.
	Ping(ctx context.Context) error
}
