package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a knowledge index is not provided.
	ErrIndexRequired = errors.New("knowledge index required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrFetcherRequired is returned when ingesting by reference without a
	// configured fetcher.
	ErrFetcherRequired = errors.New("fetcher required")

	// ErrSourceFetchFailed is returned when a source's transcript could not
	// be acquired. The batch continues with the remaining sources.
	ErrSourceFetchFailed = errors.New("source fetch failed")

	// ErrInvalidMaxAttempts is returned for a non-positive retry budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
