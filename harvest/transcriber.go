package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cadenza-ai/mentor/core"
)

// Transcription is slow; give the server room before giving up.
const defaultTranscribeTimeout = 10 * time.Minute

// transcribeRequest is the body sent to the transcription server.
type transcribeRequest struct {
	Ref      string `json:"ref"`
	Language string `json:"language,omitempty"`
}

// transcribeResponse is the body returned by the transcription server.
type transcribeResponse struct {
	Text string `json:"text"`
}

// TranscriberClient fetches transcripts from a speech-recognition server.
//
// The server is expected to serve POST {base}/transcriptions, taking a
// source reference, pulling the audio itself, and returning the recognized
// text. Used as the last rung of the fetch ladder when no caption track
// exists.
type TranscriberClient struct {
	baseURL  string
	language string
	client   *http.Client
}

var _ Fetcher = (*TranscriberClient)(nil)

// TranscriberOption configures a TranscriberClient.
type TranscriberOption func(*TranscriberClient)

// WithTranscriberHTTPClient sets a custom HTTP client.
func WithTranscriberHTTPClient(client *http.Client) TranscriberOption {
	return func(c *TranscriberClient) {
		c.client = client
	}
}

// WithTranscriberLanguage passes a language hint to the recognizer.
func WithTranscriberLanguage(language string) TranscriberOption {
	return func(c *TranscriberClient) {
		c.language = language
	}
}

// NewTranscriberClient creates a transcription fetcher against the given
// base URL.
func NewTranscriberClient(baseURL string, opts ...TranscriberOption) *TranscriberClient {
	c := &TranscriberClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTranscribeTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the fetcher in logs.
func (c *TranscriberClient) Name() string {
	return "transcriber"
}

// Fetch asks the transcription server to recognize the audio behind ref.
func (c *TranscriberClient) Fetch(ctx context.Context, ref string) (*core.TranscriptSource, error) {
	body, err := json.Marshal(transcribeRequest{
		Ref:      ref,
		Language: c.language,
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request for %s: %w", ref, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: no audio for %s", ErrNotAvailable, ref)
	default:
		return nil, fmt.Errorf("transcription request for %s: unexpected status %d", ref, resp.StatusCode)
	}

	var result transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("transcription response for %s: %w", ref, err)
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: transcription of %s", ErrEmptyTranscript, ref)
	}

	return &core.TranscriptSource{
		SourceID:  ref,
		OriginRef: ref,
		Text:      text,
		Language:  c.language,
	}, nil
}
