package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns ErrEmbeddingUnavailable (wrapped) if the model endpoint is
	// unreachable or returns malformed output.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing amortizes model invocation cost. The returned slice
	// contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel generates text from a prompt via a language-model endpoint.
// Implementations must be thread-safe for concurrent use and must honor
// context cancellation so callers can bound the call duration.
type ChatModel interface {
	// Generate produces a completion for the prompt, capped at maxTokens
	// output tokens and sampled at the given temperature.
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// ChatModel instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// ChatModel returns the text generation service.
	ChatModel() ChatModel

	// Close releases resources held by the provider and its services.
	Close() error
}
