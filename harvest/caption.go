package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cadenza-ai/mentor/core"
)

const defaultHTTPTimeout = 60 * time.Second

// captionSegment is one timed segment of a caption track.
type captionSegment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// CaptionClient fetches published caption tracks from a caption API.
//
// The API is expected to serve GET {base}/captions/{ref} with an optional
// lang query parameter, returning a JSON array of timed segments.
type CaptionClient struct {
	baseURL  string
	language string
	client   *http.Client
}

var _ Fetcher = (*CaptionClient)(nil)

// CaptionOption configures a CaptionClient.
type CaptionOption func(*CaptionClient)

// WithCaptionHTTPClient sets a custom HTTP client.
func WithCaptionHTTPClient(client *http.Client) CaptionOption {
	return func(c *CaptionClient) {
		c.client = client
	}
}

// WithCaptionLanguage requests caption tracks in the given language.
func WithCaptionLanguage(language string) CaptionOption {
	return func(c *CaptionClient) {
		c.language = language
	}
}

// NewCaptionClient creates a caption fetcher against the given base URL.
func NewCaptionClient(baseURL string, opts ...CaptionOption) *CaptionClient {
	c := &CaptionClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the fetcher in logs.
func (c *CaptionClient) Name() string {
	return "captions"
}

// Fetch retrieves the caption track for ref and joins its segments into a
// single transcript. A missing track maps to ErrNotAvailable.
func (c *CaptionClient) Fetch(ctx context.Context, ref string) (*core.TranscriptSource, error) {
	endpoint := c.baseURL + "/captions/" + url.PathEscape(ref)
	if c.language != "" {
		endpoint += "?lang=" + url.QueryEscape(c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("caption request for %s: %w", ref, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: no caption track for %s", ErrNotAvailable, ref)
	default:
		return nil, fmt.Errorf("caption request for %s: unexpected status %d", ref, resp.StatusCode)
	}

	var segments []captionSegment
	if err := json.NewDecoder(resp.Body).Decode(&segments); err != nil {
		return nil, fmt.Errorf("caption response for %s: %w", ref, err)
	}

	text := joinSegments(segments)
	if text == "" {
		return nil, fmt.Errorf("%w: caption track for %s", ErrEmptyTranscript, ref)
	}

	return &core.TranscriptSource{
		SourceID:  ref,
		OriginRef: ref,
		Text:      text,
		Language:  c.language,
	}, nil
}

// joinSegments concatenates segment texts in track order, skipping blanks.
func joinSegments(segments []captionSegment) string {
	var sb strings.Builder
	for _, segment := range segments {
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}
