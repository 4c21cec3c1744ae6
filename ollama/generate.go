package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/stonemill-io/grist/iox"
	"github.com/stonemill-io/grist/prompt"
)

// Generation is the outcome of a single generate request. Transport
// failures, non-2xx statuses, and undecodable bodies land in Err rather
// than aborting the batch; the caller folds them into the per-file result.
type Generation struct {
	// Text is the model response. Empty when the server omits the
	// response field or when Err is set.
	Text string
	// Err is the request failure, nil on success.
	Err error
}

// Failed reports whether the generation errored.
func (g Generation) Failed() bool { return g.Err != nil }

// Output returns the response text, or an "Error: ..." string when the
// request failed. The error form flows into results unchanged.
func (g Generation) Output() string {
	if g.Err != nil {
		return "Error: " + g.Err.Error()
	}
	return g.Text
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// CheckConnection reports whether the server answers on /api/tags.
// Any transport failure or non-200 status reads as unreachable.
func (c *Client) CheckConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer iox.DiscardClose(resp.Body)
	drain(resp.Body)

	return resp.StatusCode == http.StatusOK
}

// Generate renders tmpl with content and issues one blocking generate
// request. Exactly one attempt is made; there are no retries.
func (c *Client) Generate(ctx context.Context, content string, tmpl prompt.Template) Generation {
	payload := generateRequest{
		Model:  c.model,
		Prompt: tmpl.Render(content),
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Generation{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Generation{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Generation{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		drain(resp.Body)
		return Generation{Err: &StatusError{Code: resp.StatusCode}}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Generation{Err: fmt.Errorf("read response: %w", err)}
	}

	var decoded struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Generation{Err: fmt.Errorf("decode response: %w", err)}
	}

	return Generation{Text: decoded.Response}
}
