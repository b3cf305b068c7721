package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"
)

const defaultUpstreamTimeout = 60 * time.Second

// UpstreamClient issues the streamed POST to the TTS provider.
type UpstreamClient struct {
	url        string
	httpClient *http.Client
	userAgent  UserAgentPicker
}

// ClientOption configures an UpstreamClient.
type ClientOption func(*UpstreamClient)

// WithHTTPClient replaces the default client, e.g. to add tracing or a custom transport.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(u *UpstreamClient) {
		u.httpClient = c
	}
}

// WithUserAgent sets how the user-agent header is chosen.
func WithUserAgent(p UserAgentPicker) ClientOption {
	return func(u *UpstreamClient) {
		u.userAgent = p
	}
}

func NewUpstreamClient(url string, opts ...ClientOption) *UpstreamClient {
	c := &UpstreamClient{
		url:        url,
		httpClient: &http.Client{Timeout: defaultUpstreamTimeout},
		userAgent:  FixedUserAgent(""),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type upstreamRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Speed float64 `json:"speed"`
}

// Send posts text to the provider and returns the unread response stream.
// The caller must Close the returned Stream.
func (c *UpstreamClient) Send(ctx context.Context, text, modelID string, speed float64) (*Stream, error) {
	data, err := json.Marshal(upstreamRequest{
		Text:          text,
		ModelID:       modelID,
		VoiceSettings: voiceSettings{Speed: speed},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")
	if ua := c.userAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*maxErrorBody))
		return nil, &UpstreamHTTPError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	if !streamableContentType(contentType) {
		slog.WarnContext(ctx, "unexpected upstream content type", "content_type", contentType)
	}

	return NewStream(resp.Body, contentType), nil
}

func streamableContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "text/event-stream", "application/x-ndjson", "application/jsonl":
		return true
	}
	return false
}
