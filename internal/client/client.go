// Package client is the typed HTTP client for the cuentadinos gateway
// endpoints, used by the listener CLI and the segment loader.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StatusError is a non-2xx answer from the gateway. The code is preserved so
// the playback engine can distinguish upstream failures from transport ones.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("server returned status %d", e.Code)
}

func (e *StatusError) StatusCode() int { return e.Code }

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given server base URL, e.g.
// "http://localhost:8888". Requests carry no client-side timeout; pass a
// context to bound or cancel them.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type storyRequest struct {
	Dinosaur string `json:"dinosaur"`
	Style    string `json:"style"`
	Lesson   string `json:"lesson"`
}

type storyResponse struct {
	Story string `json:"story"`
}

// GenerateStory asks the text endpoint for a new story.
func (c *Client) GenerateStory(ctx context.Context, dinosaur, style, lesson string) (string, error) {
	body, err := c.post(ctx, "/api/story", storyRequest{Dinosaur: dinosaur, Style: style, Lesson: lesson}, "")
	if err != nil {
		return "", err
	}

	var parsed storyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse story response: %w", err)
	}
	if parsed.Story == "" {
		return "", fmt.Errorf("story response was empty")
	}
	return parsed.Story, nil
}

type speechRequest struct {
	Text string `json:"text"`
}

// FetchSpeech asks the speech endpoint to voice one text segment, in binary
// mode, and returns the raw MP3 bytes. Cancelling the context aborts the
// request at the transport level.
func (c *Client) FetchSpeech(ctx context.Context, text string) ([]byte, error) {
	return c.post(ctx, "/api/audio", speechRequest{Text: text}, "binary")
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, format string) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + path
	if format != "" {
		endpoint += "?format=" + format
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
