package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/storage"
)

// ErrRepositoryRequired is returned when a session repository is not provided.
var ErrRepositoryRequired = errors.New("session repository required")

// Store provides serialized access to conversation sessions.
type Store struct {
	repository storage.SessionRepository
	logger     *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a session store over the given repository.
func NewStore(repository storage.SessionRepository, opts ...Option) (*Store, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Store{
		repository: repository,
		logger:     slog.Default(),
		locks:      make(map[string]*sync.Mutex),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// lockFor returns the mutex for a session id, creating it on first use.
// Entries are dropped on Reset; otherwise they live with the process.
func (s *Store) lockFor(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// GetOrCreate retrieves the session, creating it lazily.
func (s *Store) GetOrCreate(ctx context.Context, sessionID string) (*core.Session, error) {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.repository.GetOrCreate(ctx, sessionID)
}

// AppendTurn appends a turn to the session under the per-session lock.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, turn *core.ConversationTurn) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	return s.repository.AppendTurn(ctx, sessionID, turn)
}

// HistoryWindow retrieves the most recent maxTurns turns in chronological
// order.
func (s *Store) HistoryWindow(ctx context.Context, sessionID string, maxTurns int) ([]*core.ConversationTurn, error) {
	return s.repository.HistoryWindow(ctx, sessionID, maxTurns)
}

// Reset removes the session and its turn log.
func (s *Store) Reset(ctx context.Context, sessionID string) error {
	lock := s.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	err := s.repository.Reset(ctx, sessionID)
	if err == nil {
		s.mu.Lock()
		delete(s.locks, sessionID)
		s.mu.Unlock()
	}
	return err
}
