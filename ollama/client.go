// Package ollama is a minimal client for an Ollama-compatible inference
// server. It covers the two endpoints the pipeline needs: /api/tags for
// liveness and model listing, and /api/generate for blocking generation.
package ollama

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// DefaultModel is used when no model is configured.
const DefaultModel = "llama3.2"

// Client issues blocking requests against one inference server.
// Construct with New; the zero value is not usable.
type Client struct {
	model   string
	baseURL string
	client  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the server base URL.
// A trailing slash is stripped so path joins stay predictable.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets a per-request timeout. Zero means no timeout,
// matching the blocking nature of long generations.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// New creates a Client for the given model. An empty model selects
// DefaultModel.
func New(model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		model:   model,
		baseURL: DefaultBaseURL,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// drain consumes the remainder of a response body so the underlying
// connection can be reused.
func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, body)
}
