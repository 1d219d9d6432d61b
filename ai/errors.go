package ai

import "errors"

var (
	// ErrEmbeddingUnavailable indicates the embedding endpoint is unreachable
	// or returned malformed output. Retryable with bounded backoff.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrChatUnavailable indicates the language-model endpoint is unreachable
	// or errored. Callers surface a canned response instead of this error.
	ErrChatUnavailable = errors.New("language model unavailable")
)
