package respond

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cadenza-ai/mentor/ai"
	"github.com/cadenza-ai/mentor/ai/mock"
	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/retrieval"
	"github.com/cadenza-ai/mentor/session"
	badgerstore "github.com/cadenza-ai/mentor/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResponder wires a responder over in-memory storage, the
// deterministic mock embedder, and a mock chat model. The given texts are
// pre-indexed so a query matching one of them exactly retrieves it.
func newTestResponder(t *testing.T, texts ...string) (*Responder, *mock.MockChatModel, *session.Store) {
	t.Helper()

	index, sessions, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		sessions.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	for i, text := range texts {
		require.NoError(t, index.InsertRecords(context.Background(), &core.EmbeddingRecord{
			SourceID:  "ep-001",
			Seq:       i,
			OriginRef: "https://example.com/ep-001",
			Text:      text,
			Vector:    mock.DeterministicVector(text, embedder.Dimension),
		}))
	}

	engine, err := retrieval.NewEngine(index, embedder)
	require.NoError(t, err)

	store, err := session.NewStore(sessions)
	require.NoError(t, err)

	chat := mock.NewMockChatModel()

	responder, err := NewResponder(store, engine, chat,
		WithRetrievalPolicy(3, 0.95),
		WithRequestTimeout(5*time.Second),
	)
	require.NoError(t, err)

	return responder, chat, store
}

func TestRespond_Grounded(t *testing.T) {
	responder, chat, store := newTestResponder(t, "delegation builds trust")
	chat.GenerateFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return "Delegate outcomes, not tasks.", nil
	}

	ctx := context.Background()
	answer, err := responder.Respond(ctx, "session-1", "delegation builds trust")
	require.NoError(t, err)
	assert.Equal(t, "Delegate outcomes, not tasks.", answer)

	// The prompt carried the retrieved passage and its source
	assert.Contains(t, chat.LastPrompt(), "KNOWLEDGE CONTEXT")
	assert.Contains(t, chat.LastPrompt(), "delegation builds trust")
	assert.Contains(t, chat.LastPrompt(), "https://example.com/ep-001")

	// Both turns were persisted
	turns, err := store.HistoryWindow(ctx, "session-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, core.SpeakerUser, turns[0].Speaker)
	assert.Equal(t, core.SpeakerAssistant, turns[1].Speaker)
	assert.Equal(t, answer, turns[1].Text)
}

func TestRespond_FallbackOnNoKnowledge(t *testing.T) {
	responder, chat, _ := newTestResponder(t) // empty index

	answer, err := responder.Respond(context.Background(), "session-1", "how do I delegate?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	assert.Contains(t, chat.LastPrompt(), "No knowledge context is available")
	assert.NotContains(t, chat.LastPrompt(), "KNOWLEDGE CONTEXT")
}

func TestRespond_FallbackOnRetrievalFailure(t *testing.T) {
	index, sessions, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		sessions.Close()
		backend.Close()
	})

	// The embedder is down for every attempt, so retrieval fails outright
	// rather than coming back empty.
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, ai.ErrEmbeddingUnavailable
	}

	engine, err := retrieval.NewEngine(index, embedder,
		retrieval.WithEmbedRetry(1, time.Millisecond))
	require.NoError(t, err)

	store, err := session.NewStore(sessions)
	require.NoError(t, err)

	chat := mock.NewMockChatModel()
	responder, err := NewResponder(store, engine, chat,
		WithRequestTimeout(5*time.Second))
	require.NoError(t, err)

	ctx := context.Background()
	answer, err := responder.Respond(ctx, "session-1", "how do I delegate?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)

	// Degraded to the ungrounded prompt instead of surfacing the error
	assert.Contains(t, chat.LastPrompt(), "No knowledge context is available")
	assert.NotContains(t, chat.LastPrompt(), "KNOWLEDGE CONTEXT")

	// Both turns still persisted
	turns, err := store.HistoryWindow(ctx, "session-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, answer, turns[1].Text)
}

func TestRespond_ApologyOnModelFailure(t *testing.T) {
	responder, chat, store := newTestResponder(t)
	chat.GenerateFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return "", errors.New("model exploded")
	}

	ctx := context.Background()
	answer, err := responder.Respond(ctx, "session-1", "how do I delegate?")
	require.NoError(t, err)
	assert.Equal(t, apologyMessage, answer)

	// The apology is never persisted as an assistant turn
	turns, err := store.HistoryWindow(ctx, "session-1", 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, core.SpeakerUser, turns[0].Speaker)
}

func TestRespond_HistoryInPrompt(t *testing.T) {
	responder, chat, store := newTestResponder(t)

	ctx := context.Background()
	require.NoError(t, store.AppendTurn(ctx, "session-1", &core.ConversationTurn{
		Speaker:   core.SpeakerUser,
		Text:      "earlier question",
		Timestamp: time.Now().UTC(),
	}))
	require.NoError(t, store.AppendTurn(ctx, "session-1", &core.ConversationTurn{
		Speaker:   core.SpeakerAssistant,
		Text:      "earlier answer",
		Timestamp: time.Now().UTC(),
	}))

	_, err := responder.Respond(ctx, "session-1", "follow-up question")
	require.NoError(t, err)

	prompt := chat.LastPrompt()
	assert.Contains(t, prompt, "CONVERSATION SO FAR")
	assert.Contains(t, prompt, "User: earlier question")
	assert.Contains(t, prompt, "Assistant: earlier answer")

	// The current message appears once, after the history block
	assert.Equal(t, 1, strings.Count(prompt, "follow-up question"))
	assert.True(t, strings.HasSuffix(prompt, "User: follow-up question\nAssistant:"))
}

func TestRespond_EmptyMessage(t *testing.T) {
	responder, _, _ := newTestResponder(t)

	_, err := responder.Respond(context.Background(), "session-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestRespond_CutsRoleLeak(t *testing.T) {
	responder, chat, _ := newTestResponder(t)
	chat.GenerateFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return "Real answer.\nUser: imagined question\nAssistant: imagined answer", nil
	}

	answer, err := responder.Respond(context.Background(), "session-1", "question")
	require.NoError(t, err)
	assert.Equal(t, "Real answer.", answer)
}

func TestWelcome(t *testing.T) {
	responder, _, _ := newTestResponder(t)
	assert.NotEmpty(t, responder.Welcome())
}

func TestNewResponder_RequiredDependencies(t *testing.T) {
	responder, chat, store := newTestResponder(t)
	_ = responder

	_, err := NewResponder(nil, nil, chat)
	assert.ErrorIs(t, err, ErrSessionStoreRequired)

	_, err = NewResponder(store, nil, chat)
	assert.ErrorIs(t, err, ErrEngineRequired)

	_, err = NewResponder(store, responderEngine(t), nil)
	assert.ErrorIs(t, err, ErrChatModelRequired)
}

// responderEngine builds a throwaway engine for constructor tests.
func responderEngine(t *testing.T) *retrieval.Engine {
	t.Helper()
	index, sessions, backend, err := badgerstore.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() {
		index.Close()
		sessions.Close()
		backend.Close()
	})
	engine, err := retrieval.NewEngine(index, mock.NewMockEmbedder())
	require.NoError(t, err)
	return engine
}
