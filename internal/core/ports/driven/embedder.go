package driven

import "context"

// Embedder turns text into a vector for similarity search against the
// note embeddings index. The generation engine typically provides this
// alongside chat completions.
type Embedder interface {
	// Embed returns the embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}
