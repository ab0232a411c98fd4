// Package config provides environment-driven configuration for voicepipe.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service configuration, populated from the environment.
type Config struct {
	// HTTP server
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// ElevenLabs provider
	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL"`

	// Pipeline limits
	MaxInputChars    int           `env:"VOICE_MAX_INPUT_CHARS" envDefault:"4000"`
	SynthesisTimeout time.Duration `env:"VOICE_SYNTHESIS_TIMEOUT" envDefault:"30s"`

	// Circuit breaker
	BreakerThreshold int           `env:"VOICE_BREAKER_THRESHOLD" envDefault:"3"`
	BreakerReset     time.Duration `env:"VOICE_BREAKER_RESET" envDefault:"60s"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks limit fields for sane values. The provider credential is
// deliberately not required here: the service starts without it and reports
// the voice feature as unavailable instead.
func (c *Config) Validate() error {
	if c.MaxInputChars <= 0 {
		return fmt.Errorf("config: VOICE_MAX_INPUT_CHARS must be positive, got %d", c.MaxInputChars)
	}
	if c.SynthesisTimeout <= 0 {
		return fmt.Errorf("config: VOICE_SYNTHESIS_TIMEOUT must be positive, got %s", c.SynthesisTimeout)
	}
	if c.BreakerThreshold <= 0 {
		return fmt.Errorf("config: VOICE_BREAKER_THRESHOLD must be positive, got %d", c.BreakerThreshold)
	}
	if c.BreakerReset <= 0 {
		return fmt.Errorf("config: VOICE_BREAKER_RESET must be positive, got %s", c.BreakerReset)
	}
	return nil
}

// VoiceConfigured reports whether the TTS provider credential is present.
func (c *Config) VoiceConfigured() bool {
	return c.ElevenLabsAPIKey != ""
}
