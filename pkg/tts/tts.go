// Package tts provides the text-to-speech provider client for voicepipe.
//
// The package defines a small Provider interface so the voice pipeline can be
// tested against a mock, with ElevenLabs as the production implementation.
// Every synthesis call carries its own VoiceConfig: the pipeline speaks as
// different personas within a single response, so voice selection is
// per-call, not per-client.
//
// Example usage:
//
//	client, _ := tts.NewElevenLabs(
//	    tts.WithAPIKey(os.Getenv("ELEVENLABS_API_KEY")),
//	)
//	defer client.Close()
//
//	result, _ := client.Synthesize(ctx, "Hello world", tts.VoiceConfig{
//	    VoiceID: "21m00Tcm4TlvDq8ikWAM",
//	    ModelID: tts.ModelMultilingualV2,
//	    Settings: tts.DefaultVoiceSettings(),
//	})
//	// result.Audio contains MP3 audio bytes
package tts

import (
	"context"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio with the given voice, returning the
	// complete audio buffer. The response format is always audio/mpeg.
	Synthesize(ctx context.Context, text string, voice VoiceConfig) (*AudioResult, error)

	// Health checks provider connectivity and credential validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// VoiceConfig selects a synthesis voice for one call.
// Instances are static configuration: looked up, never mutated.
type VoiceConfig struct {
	// VoiceID is the provider voice identifier.
	VoiceID string

	// ModelID is the provider model identifier.
	ModelID string

	// Settings controls the voice characteristics.
	Settings VoiceSettings
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the raw audio/mpeg data.
	Audio []byte

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the request round-trip time in milliseconds.
	LatencyMs int64
}

// VoiceSettings controls voice characteristics.
// These settings affect the expressiveness and consistency of the speech.
type VoiceSettings struct {
	// Stability controls voice consistency (0.0-1.0).
	// Lower values = more expressive/variable, higher = more consistent.
	Stability float64

	// SimilarityBoost controls how closely the voice matches the original (0.0-1.0).
	SimilarityBoost float64

	// Style controls style exaggeration (0.0-1.0).
	// Only supported by ElevenLabs v2 models.
	Style float64

	// SpeakerBoost enhances speaker clarity.
	SpeakerBoost bool
}

// DefaultVoiceSettings returns sensible defaults for voice synthesis.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		SpeakerBoost:    true,
	}
}
