package mentor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cadenza-ai/mentor/ai/mock"
	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/respond"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSystem(t *testing.T) {
	t.Run("create new system", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		sys, err := NewSystem(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, sys)
		defer sys.Close()

		// Verify components are initialized
		assert.NotNil(t, sys.KnowledgeIndex())
		assert.NotNil(t, sys.SessionStore())
		assert.NotNil(t, sys.Provider())
		assert.NotNil(t, sys.backend)
		assert.NotNil(t, sys.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a system at a file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		sys, err := NewSystem(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, sys)
	})
}

func TestSystem_Close(t *testing.T) {
	sys, err := NewSystem(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, sys)

	err = sys.Close()
	assert.NoError(t, err)
}

func TestSystem_FactoryMethods(t *testing.T) {
	sys, err := NewSystem("", WithInMemoryStorage(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, sys)
	defer sys.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := sys.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create retrieval engine", func(t *testing.T) {
		engine, err := sys.NewRetrievalEngine()
		require.NoError(t, err)
		require.NotNil(t, engine)
	})

	t.Run("can create responder", func(t *testing.T) {
		responder, err := sys.NewResponder()
		require.NoError(t, err)
		require.NotNil(t, responder)
	})
}

// TestSystem_IngestThenChat exercises the full path: a transcript goes
// through the pipeline into the index, then a chat message retrieves it
// and the prompt carries the passage.
func TestSystem_IngestThenChat(t *testing.T) {
	provider := mock.NewMockProvider().(*mock.MockProvider)
	chat := provider.GetMockChatModel()
	chat.GenerateFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return "Start by delegating one meaningful decision per week.", nil
	}

	sys, err := NewSystem("", WithInMemoryStorage(), WithProvider(provider))
	require.NoError(t, err)
	defer sys.Close()

	ctx := context.Background()

	// Short enough to land in a single chunk, so an exact-text query
	// retrieves it with similarity 1.0.
	passage := "Great leaders delegate outcomes instead of tasks. " +
		"When you hand someone a decision and hold them to the result, " +
		"you grow their judgment and free your own attention."

	pipeline, err := sys.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	result, err := pipeline.IngestSources(ctx, &core.TranscriptSource{
		SourceID:  "ep-001",
		OriginRef: "https://example.com/ep-001",
		Text:      passage,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Done)
	assert.Equal(t, 1, result.Records)

	responder, err := sys.NewResponder(respond.WithRetrievalPolicy(3, 0.95))
	require.NoError(t, err)

	t.Run("grounded answer", func(t *testing.T) {
		answer, err := responder.Respond(ctx, "session-1", passage)
		require.NoError(t, err)
		assert.Equal(t, "Start by delegating one meaningful decision per week.", answer)
		assert.Contains(t, chat.LastPrompt(), "KNOWLEDGE CONTEXT")
		assert.Contains(t, chat.LastPrompt(), "delegate outcomes instead of tasks")
	})

	t.Run("fallback when nothing matches", func(t *testing.T) {
		answer, err := responder.Respond(ctx, "session-2", "what should I cook tonight?")
		require.NoError(t, err)
		assert.NotEmpty(t, answer)
		assert.Contains(t, chat.LastPrompt(), "No knowledge context is available")
	})
}
