package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cadenza-ai/mentor/core"
	badgerstore "github.com/cadenza-ai/mentor/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	index, sessions, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		sessions.Close()
		backend.Close()
	})

	store, err := NewStore(sessions)
	require.NoError(t, err)
	return store
}

func userTurn(text string) *core.ConversationTurn {
	return &core.ConversationTurn{
		Speaker:   core.SpeakerUser,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

func TestStore_LazyCreation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	session, err := store.GetOrCreate(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", session.SessionID)
	assert.Equal(t, 0, session.TurnCount)
}

func TestStore_AppendAndWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, store.AppendTurn(ctx, "session-1", userTurn(fmt.Sprintf("turn %d", i))))
	}

	turns, err := store.HistoryWindow(ctx, "session-1", 5)
	require.NoError(t, err)
	require.Len(t, turns, 5)
	assert.Equal(t, "turn 2", turns[0].Text)
	assert.Equal(t, "turn 6", turns[4].Text)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const turnsPerWorker = 10
	const workers = 4

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < turnsPerWorker; i++ {
				if err := store.AppendTurn(ctx, "session-1", userTurn("concurrent turn")); err != nil {
					t.Errorf("AppendTurn failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	// The per-session lock serializes appends, so no turn is lost
	session, err := store.GetOrCreate(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, workers*turnsPerWorker, session.TurnCount)

	turns, err := store.HistoryWindow(ctx, "session-1", workers*turnsPerWorker)
	require.NoError(t, err)
	assert.Len(t, turns, workers*turnsPerWorker)
}

func TestStore_Isolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendTurn(ctx, "session-a", userTurn("a only")))
	require.NoError(t, store.AppendTurn(ctx, "session-b", userTurn("b only")))

	turns, err := store.HistoryWindow(ctx, "session-a", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "a only", turns[0].Text)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendTurn(ctx, "session-1", userTurn("gone soon")))
	require.NoError(t, store.Reset(ctx, "session-1"))

	turns, err := store.HistoryWindow(ctx, "session-1", 10)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestNewStore_RequiredRepository(t *testing.T) {
	_, err := NewStore(nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}
