package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/cadenza-ai/mentor/ai"
	"github.com/cadenza-ai/mentor/chunk"
	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/harvest"
	"github.com/cadenza-ai/mentor/storage"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 100
	defaultBatchSize    = 16
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 500 * time.Millisecond
)

// Pipeline orchestrates the ingestion of transcript sources into the
// knowledge index: dedup, chunk, embed, atomic insert.
type Pipeline struct {
	index    storage.KnowledgeIndex
	embedder ai.Embedder
	fetcher  harvest.Fetcher
	pool     *ants.Pool

	chunkSize    int
	chunkOverlap int
	batchSize    int
	maxAttempts  int
	baseDelay    time.Duration

	progressWriter   io.Writer
	progressInterval int

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for intra-batch parallelism.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithFetcher sets the transcript fetcher used by IngestRefs.
func WithFetcher(fetcher harvest.Fetcher) Option {
	return func(p *Pipeline) error {
		p.fetcher = fetcher
		return nil
	}
}

// WithChunkWindow sets the chunk size and overlap in characters.
// Defaults are 1000 and 100.
func WithChunkWindow(size, overlap int) Option {
	return func(p *Pipeline) error {
		p.chunkSize = size
		p.chunkOverlap = overlap
		return nil
	}
}

// WithBatchSize sets how many sources are processed per batch.
// Default is 16.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithRetryPolicy sets the embedding retry budget and base backoff delay.
// Defaults are 3 attempts starting at 500ms.
func WithRetryPolicy(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithProgress reports progress to writer every interval sources.
func WithProgress(writer io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progressWriter = writer
		p.progressInterval = interval
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(index storage.KnowledgeIndex, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		index:        index,
		embedder:     embedder,
		pool:         pool,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		batchSize:    defaultBatchSize,
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		logger:       slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestSources processes pre-fetched transcript sources.
// Sources are processed in sequential batches with bounded parallelism
// inside each batch; one failing source never aborts its batch.
func (p *Pipeline) IngestSources(ctx context.Context, sources ...*core.TranscriptSource) (*Result, error) {
	return p.run(ctx, len(sources), func(i int) SourceResult {
		return p.processSource(ctx, sources[i])
	})
}

// IngestRefs fetches transcripts by reference through the configured
// fetcher, then processes them like IngestSources. A fetch failure marks
// the source Failed and the batch continues.
func (p *Pipeline) IngestRefs(ctx context.Context, refs ...string) (*Result, error) {
	if p.fetcher == nil {
		return nil, ErrFetcherRequired
	}

	return p.run(ctx, len(refs), func(i int) SourceResult {
		// Cheap skip before fetching: the existence check costs one read,
		// a fetch may cost a transcription.
		has, err := p.index.HasSource(ctx, refs[i])
		if err != nil {
			return SourceResult{SourceID: refs[i], State: StateFailed, Err: err}
		}
		if has {
			return SourceResult{SourceID: refs[i], State: StateDeduplicated}
		}

		source, err := p.fetcher.Fetch(ctx, refs[i])
		if err != nil {
			return SourceResult{
				SourceID: refs[i],
				State:    StateFailed,
				Err:      fmt.Errorf("%w: %w", ErrSourceFetchFailed, err),
			}
		}
		return p.processSource(ctx, source)
	})
}

// run executes jobs in sequential batches of batchSize, with each batch's
// jobs submitted to the worker pool.
func (p *Pipeline) run(ctx context.Context, total int, job func(i int) SourceResult) (*Result, error) {
	result := &Result{
		Sources: make([]SourceResult, total),
	}
	if total == 0 {
		return result, nil
	}

	var progress *progressReporter
	if p.progressWriter != nil {
		progress = newProgressReporter(p.progressWriter, total, p.progressInterval)
	}

	p.logger.Info("ingestion run starting", "sources", total, "batchSize", p.batchSize)

	for batchStart := 0; batchStart < total; batchStart += p.batchSize {
		batchEnd := batchStart + p.batchSize
		if batchEnd > total {
			batchEnd = total
		}

		var wg sync.WaitGroup
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			work := func() {
				defer wg.Done()
				result.Sources[i] = job(i)
				if progress != nil {
					progress.Add(1)
				}
			}
			// Fall back to inline execution if the pool rejects the task
			if err := p.pool.Submit(work); err != nil {
				work()
			}
		}
		wg.Wait()
	}

	if progress != nil {
		progress.Close()
	}

	for _, sr := range result.Sources {
		switch sr.State {
		case StateDone:
			result.Done++
			result.Records += sr.Records
		case StateDeduplicated:
			result.Skipped++
		case StateFailed:
			result.Failed++
			p.logger.Warn("source failed", "sourceId", sr.SourceID, "error", sr.Err)
		}
	}

	p.logger.Info("ingestion run finished",
		"done", result.Done,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"records", result.Records)

	return result, nil
}

// processSource walks one source through dedup, chunk, embed, insert.
func (p *Pipeline) processSource(ctx context.Context, source *core.TranscriptSource) SourceResult {
	sr := SourceResult{State: StateDiscovered}
	if source != nil {
		sr.SourceID = source.SourceID
	}

	if err := core.ValidateSource(source); err != nil {
		sr.State = StateFailed
		sr.Err = err
		return sr
	}

	has, err := p.index.HasSource(ctx, source.SourceID)
	if err != nil {
		sr.State = StateFailed
		sr.Err = err
		return sr
	}
	if has {
		p.logger.Debug("source already indexed, skipping", "sourceId", source.SourceID)
		sr.State = StateDeduplicated
		return sr
	}

	text := chunk.Normalize(source.Text)
	if text == "" {
		sr.State = StateFailed
		sr.Err = fmt.Errorf("%w: source %s is empty after normalization", core.ErrEmptyText, source.SourceID)
		return sr
	}

	chunks, err := chunk.Split(source.SourceID, text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		sr.State = StateFailed
		sr.Err = err
		return sr
	}
	sr.State = StateChunked

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		sr.State = StateFailed
		sr.Err = err
		return sr
	}
	if len(vectors) != len(chunks) {
		sr.State = StateFailed
		sr.Err = fmt.Errorf("%w: got %d vectors for %d chunks", ai.ErrEmbeddingUnavailable, len(vectors), len(chunks))
		return sr
	}
	sr.State = StateEmbedded

	records := make([]*core.EmbeddingRecord, len(chunks))
	for i, c := range chunks {
		records[i] = &core.EmbeddingRecord{
			SourceID:  c.SourceID,
			Seq:       c.Seq,
			OriginRef: source.OriginRef,
			Language:  source.Language,
			Text:      c.Text,
			Vector:    vectors[i],
		}
	}

	if err := p.index.InsertRecords(ctx, records...); err != nil {
		sr.State = StateFailed
		sr.Err = err
		return sr
	}
	sr.State = StateIndexed

	p.logger.Debug("source indexed", "sourceId", source.SourceID, "records", len(records))
	sr.State = StateDone
	sr.Records = len(records)
	return sr
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
