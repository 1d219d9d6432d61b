package retrieval

import (
	"context"
	"log/slog"
	"time"

	"github.com/cadenza-ai/mentor/ai"
	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/ingestion"
	"github.com/cadenza-ai/mentor/storage"
)

// Candidates fetched per requested result before threshold filtering.
// Keeps K results reachable when the cutoff discards borderline hits.
const overFetchFactor = 3

// Query embedding retry budget. A chat turn is blocked while this runs,
// so the worst-case added latency must stay well under a second.
const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 100 * time.Millisecond
)

// Engine retrieves knowledge records relevant to a query.
type Engine struct {
	index    storage.KnowledgeIndex
	embedder ai.Embedder
	logger   *slog.Logger

	retryAttempts int
	retryDelay    time.Duration
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithEmbedRetry sets how often a failing query embedding is attempted
// and the base delay of the exponential backoff between attempts.
// Default is 3 attempts with a 100ms base delay.
func WithEmbedRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *Engine) error {
		if maxAttempts <= 0 || baseDelay < 0 {
			return ErrInvalidRetryPolicy
		}
		e.retryAttempts = maxAttempts
		e.retryDelay = baseDelay
		return nil
	}
}

// NewEngine creates a new retrieval engine.
func NewEngine(index storage.KnowledgeIndex, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		index:         index,
		embedder:      embedder,
		logger:        slog.Default(),
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Retrieve finds up to k records scoring at least threshold against the
// query, in descending score order. An empty result is not an error; it
// signals the caller to answer without grounding.
func (e *Engine) Retrieve(ctx context.Context, query string, k int, threshold float32) ([]*core.SearchResult, error) {
	return e.RetrieveWithMonitor(ctx, query, k, threshold, nil)
}

// RetrieveWithMonitor is Retrieve with stage callbacks.
func (e *Engine) RetrieveWithMonitor(ctx context.Context, query string, k int, threshold float32, monitor Monitor) ([]*core.SearchResult, error) {
	if k <= 0 {
		return nil, ErrInvalidTopK
	}
	if threshold < -1 || threshold > 1 {
		return nil, ErrInvalidThreshold
	}

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	// Query embeddings hit the same model endpoints ingestion does, so
	// transient failures get the same bounded backoff before giving up.
	var vector []float32
	err := ingestion.RetryWithBackoff(ctx, func() error {
		var embedErr error
		vector, embedErr = e.embedder.EmbedText(ctx, query)
		return embedErr
	}, e.retryAttempts, e.retryDelay)
	if err != nil {
		e.logger.Error("error generating embedding for query",
			"attempts", e.retryAttempts, "err", err)
		return nil, err
	}
	monitor.AfterEmbedding(vector)

	// Over-fetch so k stays reachable with an index that limits before
	// filtering, then cut to k after the threshold has been applied.
	candidates, err := e.index.Search(ctx, vector, threshold, k*overFetchFactor)
	if err != nil {
		e.logger.Error("error querying knowledge index", "err", err)
		return nil, err
	}
	monitor.AfterSearch(candidates)

	results := candidates
	if len(results) > k {
		results = results[:k]
	}
	monitor.Finish(results)

	e.logger.Debug("retrieval finished",
		"candidates", len(candidates),
		"results", len(results),
		"topK", k,
		"threshold", threshold)

	return results, nil
}
