package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/boardroomai/voicepipe/internal/httpc"
)

const (
	elevenLabsBaseURL  = "https://api.elevenlabs.io/v1"
	providerElevenLabs = "elevenlabs"
)

// ElevenLabs model IDs
const (
	// ModelTurboV2_5 is the fastest English model (~200ms latency).
	ModelTurboV2_5 = "eleven_turbo_v2_5"

	// ModelFlashV2_5 is the fastest multilingual model (~150ms latency).
	ModelFlashV2_5 = "eleven_flash_v2_5"

	// ModelMultilingualV2 is the highest quality multilingual model (~300ms latency).
	ModelMultilingualV2 = "eleven_multilingual_v2"
)

// ElevenLabs implements Provider for the ElevenLabs TTS API.
//
// All synthesis calls go through the configured circuit breaker. Error
// classification happens here, at the call site: 401 responses are fatal and
// bypass breaker accounting, everything else non-2xx is transient and counts.
type ElevenLabs struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewElevenLabs creates a new ElevenLabs TTS client.
func NewElevenLabs(opts ...Option) (*ElevenLabs, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = elevenLabsBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &ElevenLabs{
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "tts.elevenlabs"),
		baseURL: baseURL,
	}, nil
}

// Synthesize converts text to audio with the given voice, returning the
// complete audio/mpeg buffer.
//
// Each call is bounded by the configured per-call timeout, independent of any
// other segment being synthesized concurrently.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, voice VoiceConfig) (*AudioResult, error) {
	if voice.VoiceID == "" {
		return nil, ErrNoVoiceID
	}

	if b := e.config.Breaker; b != nil {
		if err := b.Allow(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	start := time.Now()

	url := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, voice.VoiceID)

	body, err := json.Marshal(buildPayload(text, voice))
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerElevenLabs, fmt.Errorf("create request: %w", err))
	}
	e.setHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		// Caller-driven cancellation is not a provider failure.
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		e.recordFailure()
		return nil, WrapError(providerElevenLabs, fmt.Errorf("synthesis request: %w", err))
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()

	if resp.StatusCode != http.StatusOK {
		apiErr := e.parseError(resp)
		if IsAuthFailure(apiErr) {
			// Credential rejection is an operator problem, not a provider
			// outage. It must not open the circuit.
			e.logger.Error("credential rejected by provider", "status", resp.StatusCode)
			return nil, apiErr
		}
		e.recordFailure()
		return nil, apiErr
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		e.recordFailure()
		return nil, WrapError(providerElevenLabs, fmt.Errorf("read response: %w", err))
	}

	e.recordSuccess()

	e.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
		"voice", voice.VoiceID,
		"model", voice.ModelID,
	)

	return &AudioResult{
		Audio:     audio,
		CharCount: len(text),
		LatencyMs: latency,
	}, nil
}

// Health checks API connectivity and credential validity.
func (e *ElevenLabs) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/user", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return WrapError(providerElevenLabs, err)
	}

	req.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return WrapError(providerElevenLabs, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return e.parseError(resp)
	}

	return nil
}

// Close releases resources held by the client.
func (e *ElevenLabs) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// buildPayload constructs the API request payload.
func buildPayload(text string, voice VoiceConfig) map[string]interface{} {
	return map[string]interface{}{
		"text":     text,
		"model_id": voice.ModelID,
		"voice_settings": map[string]interface{}{
			"stability":         voice.Settings.Stability,
			"similarity_boost":  voice.Settings.SimilarityBoost,
			"style":             voice.Settings.Style,
			"use_speaker_boost": voice.Settings.SpeakerBoost,
		},
	}
}

// setHeaders sets required HTTP headers.
func (e *ElevenLabs) setHeaders(req *http.Request) {
	req.Header.Set("xi-api-key", e.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
}

func (e *ElevenLabs) recordFailure() {
	if b := e.config.Breaker; b != nil {
		b.Failure()
	}
}

func (e *ElevenLabs) recordSuccess() {
	if b := e.config.Breaker; b != nil {
		b.Success()
	}
}

// parseError reads and parses an error response.
func (e *ElevenLabs) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	// Try to parse JSON error
	var errResp struct {
		Detail struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"detail"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Detail.Message != "" {
		message = errResp.Detail.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerElevenLabs,
	}
}

// Verify ElevenLabs implements Provider at compile time.
var _ Provider = (*ElevenLabs)(nil)
