package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cadenza-ai/mentor/core"
)

// Fetcher acquires the transcript for a source reference.
type Fetcher interface {
	// Fetch returns the transcript for ref.
	// Returns ErrNotAvailable if this fetcher cannot serve the reference,
	// allowing a Chain to fall through to the next fetcher.
	Fetch(ctx context.Context, ref string) (*core.TranscriptSource, error)

	// Name identifies the fetcher in logs.
	Name() string
}

// Chain tries fetchers in order until one returns a transcript.
//
// Any fetcher failure falls through to the next fetcher. Failures other
// than ErrNotAvailable are logged at warn level since they usually mean a
// misbehaving upstream rather than a missing transcript.
type Chain struct {
	fetchers []Fetcher
	logger   *slog.Logger
}

var _ Fetcher = (*Chain)(nil)

// NewChain creates a fetcher chain. Fetchers are tried in argument order.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{
		fetchers: fetchers,
		logger:   slog.Default(),
	}
}

// Name identifies the chain in logs.
func (c *Chain) Name() string {
	return "chain"
}

// Fetch tries each fetcher in order and returns the first transcript.
// Returns ErrNotAvailable when every fetcher has been exhausted, wrapping
// the last non-fall-through failure if there was one.
func (c *Chain) Fetch(ctx context.Context, ref string) (*core.TranscriptSource, error) {
	var lastErr error
	for _, fetcher := range c.fetchers {
		source, err := fetcher.Fetch(ctx, ref)
		if err == nil {
			return source, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if errors.Is(err, ErrNotAvailable) {
			c.logger.Debug("fetcher fell through",
				"fetcher", fetcher.Name(),
				"ref", ref)
		} else {
			c.logger.Warn("fetcher failed, trying next",
				"fetcher", fetcher.Name(),
				"ref", ref,
				"error", err)
			lastErr = err
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAvailable, lastErr)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotAvailable, ref)
}
