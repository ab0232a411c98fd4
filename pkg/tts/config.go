package tts

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/boardroomai/voicepipe/pkg/breaker"
)

// Config holds TTS client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Provider credentials
	APIKey  string
	BaseURL string

	// Timeout bounds each synthesis call independently.
	Timeout time.Duration

	// Breaker guards outbound calls. Optional; calls pass through when nil.
	Breaker *breaker.Breaker

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the TTS client.
type Option func(*Config)

// WithAPIKey sets the provider credential.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithTimeout sets the per-call synthesis timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithBreaker routes all provider calls through the given circuit breaker.
func WithBreaker(b *breaker.Breaker) Option {
	return func(c *Config) {
		c.Breaker = b
	}
}

// WithHTTPClient overrides the HTTP client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithLogger sets the structured logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
