package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stonemill-io/grist/iox"
)

// WebhookConfig configures the webhook publisher.
type WebhookConfig struct {
	// URL is the HTTP endpoint to POST to (required).
	URL string
	// Headers are custom HTTP headers added to the request.
	Headers map[string]string
	// Timeout is the request timeout (default 10s).
	Timeout time.Duration
}

// Webhook publishes run completion events via HTTP POST.
type Webhook struct {
	config WebhookConfig
	client *http.Client
}

// NewWebhook creates a webhook publisher from the given config.
// Returns an error if the URL is empty.
func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook publisher requires a URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Webhook{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Publish sends the event as a single JSON POST request. Any non-2xx
// response or transport failure is returned as an error; there are no
// retries.
func (w *Webhook) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Close releases publisher resources.
func (w *Webhook) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

// Verify Webhook implements the publisher interface.
var _ Publisher = (*Webhook)(nil)
