package ollama

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stonemill-io/grist/iox"
	"github.com/stonemill-io/grist/prompt"
)

func TestNew_Defaults(t *testing.T) {
	c := New("")
	t.Cleanup(iox.CloseFunc(c))

	if c.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", c.Model(), DefaultModel)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
}

func TestWithBaseURL_TrimsTrailingSlash(t *testing.T) {
	c := New("llama3.2", WithBaseURL("http://inference.local:11434/"))
	t.Cleanup(iox.CloseFunc(c))

	if c.BaseURL() != "http://inference.local:11434" {
		t.Errorf("BaseURL() = %q, want trailing slash stripped", c.BaseURL())
	}
}

func TestCheckConnection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "reachable", status: http.StatusOK, want: true},
		{name: "server error", status: http.StatusInternalServerError, want: false},
		{name: "not found", status: http.StatusNotFound, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" {
					t.Errorf("path = %q, want /api/tags", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := New("llama3.2", WithBaseURL(srv.URL))
			defer iox.DiscardClose(c)

			if got := c.CheckConnection(t.Context()); got != tt.want {
				t.Errorf("CheckConnection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckConnection_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	c := New("llama3.2", WithBaseURL(srv.URL))
	defer iox.DiscardClose(c)

	if c.CheckConnection(t.Context()) {
		t.Error("CheckConnection() = true for closed server, want false")
	}
}

func TestGenerate_Success(t *testing.T) {
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "two sentences."})
	}))
	defer srv.Close()

	c := New("llama3.2", WithBaseURL(srv.URL))
	defer iox.DiscardClose(c)

	gen := c.Generate(t.Context(), "file content", prompt.Template("Summarize:\n\n{text}"))
	if gen.Failed() {
		t.Fatalf("Generate() failed: %v", gen.Err)
	}
	if gen.Output() != "two sentences." {
		t.Errorf("Output() = %q, want %q", gen.Output(), "two sentences.")
	}

	if gotBody.Model != "llama3.2" {
		t.Errorf("request model = %q, want llama3.2", gotBody.Model)
	}
	if gotBody.Stream {
		t.Error("request stream = true, want false")
	}
	if gotBody.Prompt != "Summarize:\n\nfile content" {
		t.Errorf("request prompt = %q, template was not rendered", gotBody.Prompt)
	}
}

func TestGenerate_MissingResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("llama3.2", WithBaseURL(srv.URL))
	defer iox.DiscardClose(c)

	gen := c.Generate(t.Context(), "content", prompt.Generic)
	if gen.Failed() {
		t.Fatalf("Generate() failed: %v", gen.Err)
	}
	if gen.Output() != "" {
		t.Errorf("Output() = %q, want empty for missing response field", gen.Output())
	}
}

func TestGenerate_ErrorPaths(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		errContains string
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			errContains: "unexpected status 500",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"response": `))
			},
			errContains: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New("llama3.2", WithBaseURL(srv.URL))
			defer iox.DiscardClose(c)

			gen := c.Generate(t.Context(), "content", prompt.Generic)
			if !gen.Failed() {
				t.Fatal("Generate() succeeded, want failure")
			}
			if !strings.Contains(gen.Err.Error(), tt.errContains) {
				t.Errorf("Err = %v, want substring %q", gen.Err, tt.errContains)
			}
			if !strings.HasPrefix(gen.Output(), "Error: ") {
				t.Errorf("Output() = %q, want Error: prefix", gen.Output())
			}
		})
	}
}

func TestGenerate_StatusErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New("llama3.2", WithBaseURL(srv.URL))
	defer iox.DiscardClose(c)

	gen := c.Generate(t.Context(), "content", prompt.Generic)

	var statusErr *StatusError
	if !errors.As(gen.Err, &statusErr) {
		t.Fatalf("Err = %v, want *StatusError", gen.Err)
	}
	if statusErr.Code != http.StatusBadGateway {
		t.Errorf("Code = %d, want %d", statusErr.Code, http.StatusBadGateway)
	}
}

func TestGenerate_SingleAttempt(t *testing.T) {
	var requests atomic.Int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New("llama3.2", WithBaseURL(srv.URL))
	defer iox.DiscardClose(c)

	gen := c.Generate(t.Context(), "content", prompt.Generic)
	if !gen.Failed() {
		t.Fatal("Generate() succeeded, want failure")
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want exactly 1", n)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "llama3.2:latest", "size": 2019393189, "modified_at": "2026-08-01T10:00:00Z"},
				{"name": "mistral:7b", "size": 4109865159, "modified_at": "2026-07-15T08:30:00Z"},
			},
		})
	}))
	defer srv.Close()

	c := New("llama3.2", WithBaseURL(srv.URL))
	defer iox.DiscardClose(c)

	models, err := c.ListModels(t.Context())
	if err != nil {
		t.Fatalf("ListModels() error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	if models[0].Name != "llama3.2:latest" {
		t.Errorf("models[0].Name = %q, want llama3.2:latest", models[0].Name)
	}
	if models[1].Size != 4109865159 {
		t.Errorf("models[1].Size = %d, want 4109865159", models[1].Size)
	}
	want := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	if !models[0].ModifiedAt.Equal(want) {
		t.Errorf("models[0].ModifiedAt = %v, want %v", models[0].ModifiedAt, want)
	}
}

func TestListModels_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New("llama3.2", WithBaseURL(srv.URL))
	defer iox.DiscardClose(c)

	if _, err := c.ListModels(t.Context()); err == nil {
		t.Fatal("ListModels() = nil error, want failure")
	}
}
