package storage

import (
	"context"

	"github.com/cadenza-ai/mentor/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// KnowledgeIndex provides operations for storing embedding records and
// querying them by vector similarity.
type KnowledgeIndex interface {
	Repository
	// HasSource reports whether any records for the given source identifier
	// have been stored. Used to skip re-ingestion of already indexed sources.
	HasSource(ctx context.Context, sourceID string) (bool, error)

	// InsertRecords stores one or more embedding records atomically.
	// Either all records in the call are stored or none are.
	// Records with ID=0 get a content-based ID from (SourceID, Seq).
	// Returns ErrDimensionMismatch if a vector's dimension differs from
	// the dimension of the vectors already in the index.
	InsertRecords(ctx context.Context, records ...*core.EmbeddingRecord) error

	// Search finds records similar to the given vector.
	// Returns records with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	// An empty result is not an error.
	Search(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SearchResult, error)

	// Count returns the number of embedding records in the index.
	Count(ctx context.Context) (int, error)

	// Reset removes all records and source markers from the index.
	Reset(ctx context.Context) error
}

// SessionRepository provides operations for managing conversation sessions
// and their turn logs.
type SessionRepository interface {
	Repository
	// GetOrCreate retrieves the session with the given ID, creating it
	// with zero turns if it does not exist.
	GetOrCreate(ctx context.Context, sessionID string) (*core.Session, error)

	// AppendTurn appends a turn to the session's log and updates the
	// session's LastActivity and TurnCount. Creates the session if it
	// does not exist. Turn order is preserved across calls.
	AppendTurn(ctx context.Context, sessionID string, turn *core.ConversationTurn) error

	// HistoryWindow retrieves the most recent limit turns of a session
	// in chronological order. Returns fewer turns if the session is
	// shorter, and an empty slice for an unknown session.
	HistoryWindow(ctx context.Context, sessionID string, limit int) ([]*core.ConversationTurn, error)

	// Reset removes a session and its turn log.
	// Resetting an unknown session is not an error.
	Reset(ctx context.Context, sessionID string) error
}
