package ingestion

// SourceState tracks how far a source got through the pipeline.
type SourceState int

const (
	// StateDiscovered is the initial state of every source in a batch.
	StateDiscovered SourceState = iota
	// StateDeduplicated means the source was already indexed and skipped.
	StateDeduplicated
	// StateChunked means the transcript was normalized and split.
	StateChunked
	// StateEmbedded means all chunks have vectors.
	StateEmbedded
	// StateIndexed means the records were written to the index.
	StateIndexed
	// StateDone is the terminal success state.
	StateDone
	// StateFailed is the terminal failure state, reachable from any
	// non-terminal state.
	StateFailed
)

// String returns the state name.
func (s SourceState) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateDeduplicated:
		return "deduplicated"
	case StateChunked:
		return "chunked"
	case StateEmbedded:
		return "embedded"
	case StateIndexed:
		return "indexed"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SourceResult is the outcome of one source in a batch.
type SourceResult struct {
	// SourceID identifies the source.
	SourceID string
	// State is the terminal state the source reached.
	State SourceState
	// Records is the number of embedding records written.
	Records int
	// Err is set when State is StateFailed.
	Err error
}

// Result is the outcome of an ingestion run.
type Result struct {
	// Done counts sources fully indexed by this run.
	Done int
	// Skipped counts sources already present in the index.
	Skipped int
	// Failed counts sources that reached StateFailed.
	Failed int
	// Records counts embedding records written by this run.
	Records int
	// Sources holds the per-source outcomes in input order.
	Sources []SourceResult
}
