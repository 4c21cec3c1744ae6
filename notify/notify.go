// Package notify publishes run completion events to downstream systems.
//
// Notification is optional and best-effort: each publisher makes exactly
// one attempt, and the caller logs failures without affecting the run's
// exit code.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/stonemill-io/grist/metrics"
	"github.com/stonemill-io/grist/types"
)

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 10 * time.Second

// Event is the payload published when a run finishes.
type Event struct {
	EventType  string `json:"event_type"` // always "run_completed"
	RunID      string `json:"run_id"`
	Source     string `json:"source"`
	Model      string `json:"model"`
	Outcome    string `json:"outcome"` // completed, partial, failed
	Files      int64  `json:"files"`
	Succeeded  int64  `json:"succeeded"`
	Failed     int64  `json:"failed"`
	DurationMs int64  `json:"duration_ms"`
	Output     string `json:"output,omitempty"`
	Timestamp  string `json:"timestamp"` // ISO 8601
}

// NewEvent assembles the completion event for a finished run. output is
// the results file path, empty when the run printed to the console.
func NewEvent(meta *types.RunMeta, outcome types.RunOutcome, snap metrics.Snapshot, elapsed time.Duration, output string) *Event {
	return &Event{
		EventType:  "run_completed",
		RunID:      meta.RunID,
		Source:     meta.Source,
		Model:      meta.Model,
		Outcome:    string(outcome),
		Files:      snap.FilesProcessed,
		Succeeded:  snap.Succeeded,
		Failed:     snap.Failed,
		DurationMs: elapsed.Milliseconds(),
		Output:     output,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// Publisher sends a run completion event to a downstream system.
// Implementations must respect context cancellation and deadlines.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Options select and configure a publisher.
type Options struct {
	// Kind is "webhook" or "redis". Empty disables notification.
	Kind string
	// URL is the webhook endpoint or redis:// address.
	URL string
	// Channel overrides the Redis pub/sub channel.
	Channel string
	// Headers are added to every webhook request.
	Headers map[string]string
	// Timeout bounds a single publish attempt.
	Timeout time.Duration
}

// New builds the publisher selected by opts.Kind. An empty kind disables
// notification and returns nil without error.
func New(opts Options) (Publisher, error) {
	switch opts.Kind {
	case "":
		return nil, nil
	case "webhook":
		return NewWebhook(WebhookConfig{URL: opts.URL, Headers: opts.Headers, Timeout: opts.Timeout})
	case "redis":
		return NewRedis(RedisConfig{URL: opts.URL, Channel: opts.Channel, Timeout: opts.Timeout})
	default:
		return nil, fmt.Errorf("unknown notify type %q", opts.Kind)
	}
}
