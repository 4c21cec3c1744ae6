package config

import (
	"fmt"
	"time"
)

// Config represents a grist.yaml configuration file.
// All values are optional and act as defaults for grist process flags.
// CLI flags always override config values.
type Config struct {
	Model          string       `yaml:"model"`
	BaseURL        string       `yaml:"base_url"`
	RequestTimeout Duration     `yaml:"request_timeout"`
	Extensions     []string     `yaml:"extensions"`
	Prompt         string       `yaml:"prompt"`
	Output         OutputConfig `yaml:"output"`
	S3             S3Config     `yaml:"s3"`
	Notify         NotifyConfig `yaml:"notify"`
}

// OutputConfig holds output defaults from the config file.
type OutputConfig struct {
	Path  string `yaml:"path"`
	JSONL bool   `yaml:"jsonl"`
}

// S3Config holds connection defaults for s3:// sources. Empty credential
// fields fall back to the default AWS chain (env vars, shared config, IMDS).
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
}

// NotifyConfig holds notification defaults from the config file.
type NotifyConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
