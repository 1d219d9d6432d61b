package badger

import (
	"context"
	"time"

	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/storage"
	"github.com/dgraph-io/badger/v4"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
//
// Each session is stored as a metadata record plus a turn log keyed by
// a monotonically increasing sequence number, so turns come back in the
// order they were appended.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository over the given backend.
func NewSessionRepository(backend *Backend) (storage.SessionRepository, error) {
	return &SessionRepository{
		backend: backend,
	}, nil
}

// Close releases resources. SessionRepository has no resources to release.
func (r *SessionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SessionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetOrCreate retrieves the session with the given ID, creating it if needed.
func (r *SessionRepository) GetOrCreate(ctx context.Context, sessionID string) (*core.Session, error) {
	var result *core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		session, err := readSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session != nil {
			result = session
			return nil
		}

		now := time.Now().UTC()
		result = &core.Session{
			SessionID:    sessionID,
			CreatedAt:    now,
			LastActivity: now,
		}
		if err := tx.Set(makeSessionKey(sessionID), storage.MarshalSession(result)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return result, err
}

// AppendTurn appends a turn to the session's log.
// The turn's sequence number is the session's turn count at append time,
// so order is preserved without a separate sequence allocator.
func (r *SessionRepository) AppendTurn(ctx context.Context, sessionID string, turn *core.ConversationTurn) error {
	if err := core.ValidateTurn(turn); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		session, err := readSession(tx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			session = &core.Session{
				SessionID: sessionID,
				CreatedAt: time.Now().UTC(),
			}
		}

		key := makeTurnKey(sessionID, uint64(session.TurnCount))
		if err := tx.Set(key, storage.MarshalConversationTurn(turn)); err != nil {
			return err
		}

		session.TurnCount++
		session.LastActivity = turn.Timestamp
		if err := tx.Set(makeSessionKey(sessionID), storage.MarshalSession(session)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// HistoryWindow retrieves the most recent limit turns in chronological order.
func (r *SessionRepository) HistoryWindow(ctx context.Context, sessionID string, limit int) ([]*core.ConversationTurn, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	turns := make([]*core.ConversationTurn, 0, limit)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialTurnKey(sessionID)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the highest possible sequence for this session,
		// then walk backwards collecting the newest turns first.
		seek := make([]byte, len(prefix)+8)
		copy(seek, prefix)
		for i := len(prefix); i < len(seek); i++ {
			seek[i] = 0xFF
		}

		for iter.Seek(seek); iter.Valid() && len(turns) < limit; iter.Next() {
			item := iter.Item()

			var turn *core.ConversationTurn
			err := item.Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalConversationTurn(val)
				return err
			})
			if err != nil {
				return err
			}
			if turn != nil {
				turns = append(turns, turn)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Reset removes a session and its turn log.
func (r *SessionRepository) Reset(ctx context.Context, sessionID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeSessionKey(sessionID)); err != nil {
			return err
		}

		prefix := makePartialTurnKey(sessionID)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readSession reads a session from the transaction.
// Returns nil without error if the session does not exist.
func readSession(tx *badger.Txn, sessionID string) (*core.Session, error) {
	item, err := tx.Get(makeSessionKey(sessionID))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var session *core.Session
	err = item.Value(func(val []byte) error {
		var err error
		session, err = storage.UnmarshalSession(val)
		return err
	})
	return session, err
}
