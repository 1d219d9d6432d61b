package retrieval

import "errors"

var (
	// ErrIndexRequired is returned when a knowledge index is not provided.
	ErrIndexRequired = errors.New("knowledge index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidTopK is returned for a non-positive result budget.
	ErrInvalidTopK = errors.New("top-k must be positive")

	// ErrInvalidThreshold is returned for a threshold outside [-1, 1].
	ErrInvalidThreshold = errors.New("threshold must be within [-1, 1]")

	// ErrInvalidRetryPolicy is returned for a non-positive attempt count
	// or a negative backoff delay.
	ErrInvalidRetryPolicy = errors.New("invalid embed retry policy")
)
