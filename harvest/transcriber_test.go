package harvest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriberClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transcriptions", r.URL.Path)

		var req transcribeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ep-001", req.Ref)
		assert.Equal(t, "en", req.Language)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  Recognized speech.  "}`))
	}))
	defer server.Close()

	client := NewTranscriberClient(server.URL, WithTranscriberLanguage("en"))
	source, err := client.Fetch(context.Background(), "ep-001")
	require.NoError(t, err)

	assert.Equal(t, "ep-001", source.SourceID)
	assert.Equal(t, "Recognized speech.", source.Text)
}

func TestTranscriberClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewTranscriberClient(server.URL)
	_, err := client.Fetch(context.Background(), "ep-404")
	assert.ErrorIs(t, err, ErrNotAvailable)
}

func TestTranscriberClient_EmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": ""}`))
	}))
	defer server.Close()

	client := NewTranscriberClient(server.URL)
	_, err := client.Fetch(context.Background(), "ep-001")
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}
