package voice

import (
	"fmt"
	"strings"

	"github.com/boardroomai/voicepipe/pkg/tts"
)

// Speaker identifies one of the two advisor personas.
type Speaker string

const (
	// SpeakerAlexandria is Alexandria, the CMO persona.
	SpeakerAlexandria Speaker = "alexandria"

	// SpeakerKim is Kim, the CSO persona.
	SpeakerKim Speaker = "kim"
)

// DefaultSpeaker is used when a response carries no attribution markers.
const DefaultSpeaker = SpeakerAlexandria

// Persona binds a speaker identity to its display name, role, and voice.
type Persona struct {
	Speaker Speaker
	Name    string
	Role    string
	Voice   tts.VoiceConfig
}

// The persona table is static configuration: looked up, never mutated.
var personas = map[Speaker]Persona{
	SpeakerAlexandria: {
		Speaker: SpeakerAlexandria,
		Name:    "Alexandria",
		Role:    "CMO",
		Voice: tts.VoiceConfig{
			VoiceID: tts.ResolveElevenLabsVoice("aria"),
			ModelID: tts.ModelMultilingualV2,
			Settings: tts.VoiceSettings{
				Stability:       0.4,
				SimilarityBoost: 0.8,
				Style:           0.15,
				SpeakerBoost:    true,
			},
		},
	},
	SpeakerKim: {
		Speaker: SpeakerKim,
		Name:    "Kim",
		Role:    "CSO",
		Voice: tts.VoiceConfig{
			VoiceID:  tts.ResolveElevenLabsVoice("rachel"),
			ModelID:  tts.ModelMultilingualV2,
			Settings: tts.DefaultVoiceSettings(),
		},
	},
}

// ResolveVoice maps a speaker to its synthesis configuration.
// Unknown speakers fall back to the default persona's voice.
func ResolveVoice(s Speaker) tts.VoiceConfig {
	if p, ok := personas[s]; ok {
		return p.Voice
	}
	return personas[DefaultSpeaker].Voice
}

// PersonaFor returns the persona for a speaker.
func PersonaFor(s Speaker) (Persona, bool) {
	p, ok := personas[s]
	return p, ok
}

// ParseSpeaker converts a request string to a Speaker.
func ParseSpeaker(s string) (Speaker, error) {
	switch Speaker(strings.ToLower(strings.TrimSpace(s))) {
	case SpeakerAlexandria:
		return SpeakerAlexandria, nil
	case SpeakerKim:
		return SpeakerKim, nil
	default:
		return "", fmt.Errorf("voice: unknown speaker %q", s)
	}
}
