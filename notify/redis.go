package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "grist:run_completed"

// RedisConfig configures the Redis publisher.
type RedisConfig struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: grist:run_completed).
	Channel string
	// Timeout is the publish timeout (default 10s).
	Timeout time.Duration
}

// Redis publishes run completion events via Redis PUBLISH.
type Redis struct {
	config RedisConfig
	client *goredis.Client
}

// NewRedis creates a Redis publisher from the given config.
// Returns an error if the URL is empty or invalid.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis publisher requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: invalid URL: %w", err)
	}

	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Redis{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as a single JSON PUBLISH to the configured
// channel. There are no retries.
func (r *Redis) Publish(ctx context.Context, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	if err := r.client.Publish(publishCtx, r.config.Channel, body).Err(); err != nil {
		return fmt.Errorf("redis: publish failed: %w", err)
	}
	return nil
}

// Close releases publisher resources.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Verify Redis implements the publisher interface.
var _ Publisher = (*Redis)(nil)
