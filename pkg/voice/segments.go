package voice

import "strings"

// Segment is a contiguous span of response text attributed to one persona.
// A segment list is owned by a single pipeline invocation and is immutable
// once extracted.
type Segment struct {
	Speaker Speaker
	Text    string
}

// ExtractSegments converts a sorted marker list and the raw text into an
// ordered list of speaker-attributed segments.
//
// Absence of markers is not an error: the whole input becomes one segment
// spoken by the default persona. Text before the first marker, if any, is
// also attributed to the default persona.
func ExtractSegments(text string, markers []Marker) []Segment {
	if len(markers) == 0 {
		return []Segment{{Speaker: DefaultSpeaker, Text: strings.TrimSpace(text)}}
	}

	var segments []Segment

	if markers[0].Position > 0 {
		if lead := strings.TrimSpace(text[:markers[0].Position]); lead != "" {
			segments = append(segments, Segment{Speaker: DefaultSpeaker, Text: lead})
		}
	}

	for i, m := range markers {
		start := m.Position + m.Length
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].Position
		}

		body := strings.TrimSpace(text[start:end])
		if body == "" {
			continue
		}

		segments = append(segments, Segment{
			Speaker: resolveAttribution(m.Attribution, len(segments)),
			Text:    body,
		})
	}

	return segments
}

// resolveAttribution assigns a concrete persona to a marker. Joint turns
// alternate by how many segments have been kept so far, not by marker index,
// so alternation stays stable when empty segments are dropped.
func resolveAttribution(a Attribution, emitted int) Speaker {
	switch a {
	case AttrKim:
		return SpeakerKim
	case AttrJoint:
		if emitted%2 == 0 {
			return SpeakerAlexandria
		}
		return SpeakerKim
	default:
		return SpeakerAlexandria
	}
}
