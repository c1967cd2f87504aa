// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and SKILLMONITOR_ env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// BackendURL is the base URL of the JSON API that computes the metrics.
	BackendURL string `koanf:"backend_url"`

	// BackendTimeoutMS bounds a single backend request.
	BackendTimeoutMS int `koanf:"backend_timeout_ms"`

	// PollIntervalMS is the dashboard refresh period.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// AlertTTLMS is how long an alert stays before it is removed.
	AlertTTLMS int `koanf:"alert_ttl_ms"`

	// SettleTimeoutMS caps how long an HTTP handler waits for a session to go idle.
	SettleTimeoutMS int `koanf:"settle_timeout_ms"`

	// LoopQueueSize bounds each session's event queue.
	LoopQueueSize int `koanf:"loop_queue_size"`

	// SessionTTLMS evicts sessions idle for longer than this.
	SessionTTLMS int `koanf:"session_ttl_ms"`

	// SweepIntervalMS is the period of the idle session sweep.
	SweepIntervalMS int `koanf:"sweep_interval_ms"`

	// MaxSessions caps concurrently held sessions.
	MaxSessions int `koanf:"max_sessions"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config holding the defaults. Context is accepted first to
// follow the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		BackendURL:       "http://localhost:5000",
		BackendTimeoutMS: 10_000,
		PollIntervalMS:   30_000,
		AlertTTLMS:       5_000,
		SettleTimeoutMS:  15_000,
		LoopQueueSize:    256,
		SessionTTLMS:     30 * 60 * 1000,
		SweepIntervalMS:  60_000,
		MaxSessions:      10_000,
		MetricsEnabled:   true,
	}
}

// BackendTimeout returns BackendTimeoutMS as a duration.
func (c *Config) BackendTimeout() time.Duration { return ms(c.BackendTimeoutMS) }

// PollInterval returns PollIntervalMS as a duration.
func (c *Config) PollInterval() time.Duration { return ms(c.PollIntervalMS) }

// AlertTTL returns AlertTTLMS as a duration.
func (c *Config) AlertTTL() time.Duration { return ms(c.AlertTTLMS) }

// SettleTimeout returns SettleTimeoutMS as a duration.
func (c *Config) SettleTimeout() time.Duration { return ms(c.SettleTimeoutMS) }

// SessionTTL returns SessionTTLMS as a duration.
func (c *Config) SessionTTL() time.Duration { return ms(c.SessionTTLMS) }

// SweepInterval returns SweepIntervalMS as a duration.
func (c *Config) SweepInterval() time.Duration { return ms(c.SweepIntervalMS) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
