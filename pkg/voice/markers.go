package voice

import (
	"regexp"
	"sort"
	"strings"
)

// Attribution classifies who a marker attributes the following text to.
// Joint markers are resolved to a concrete persona at extraction time.
type Attribution int

const (
	AttrAlexandria Attribution = iota
	AttrKim
	AttrJoint
)

// Marker records one speaker-attribution match in raw text.
// Transient parsing artifact, never persisted.
type Marker struct {
	Position    int
	Length      int
	Attribution Attribution
}

// markerNames matches any attributable label: the two persona names plus the
// "Joint Strategy" pseudo-speaker the model uses for shared turns.
const markerNames = `(?:Alexandria|Kim|Joint Strategy)`

// markerPatterns are the ordered attribution pattern rules. The upstream
// model is inconsistent about marker shape, so we accept a bold-wrapped name
// with an optional parenthetical role and a colon inside or outside the
// wrapper, and a bare line-anchored "Name:" form.
//
// The same patterns are used by Sanitize to strip attribution prefixes, so a
// persona never reads its own name aloud.
var markerPatterns = []*regexp.Regexp{
	// **Name (Role):** / **Name:**
	regexp.MustCompile(`(?i)\*\*` + markerNames + `(?:\s*\([^)]*\))?\s*:\s*\*\*`),
	// **Name (Role)**: / **Name**:
	regexp.MustCompile(`(?i)\*\*` + markerNames + `(?:\s*\([^)]*\))?\s*\*\*\s*:`),
	// **Name (Role)** / **Name** without a colon
	regexp.MustCompile(`(?i)\*\*` + markerNames + `(?:\s*\([^)]*\))?\s*\*\*`),
	// Name: anchored to line start, no bold
	regexp.MustCompile(`(?im)^` + markerNames + `(?:\s*\([^)]*\))?\s*:`),
}

// dedupeWindow is how close (in characters) two recorded markers may be
// before the later one is treated as a duplicate detection of the same
// textual marker. Different patterns may match overlapping spans.
const dedupeWindow = 5

// ScanMarkers finds speaker-attribution markers in raw, pre-sanitization
// text. The returned markers are de-duplicated and sorted by position.
func ScanMarkers(text string) []Marker {
	var markers []Marker

	for _, re := range markerPatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			if hasMarkerNear(markers, loc[0]) {
				continue
			}
			markers = append(markers, Marker{
				Position:    loc[0],
				Length:      loc[1] - loc[0],
				Attribution: classifyMarker(text[loc[0]:loc[1]]),
			})
		}
	}

	sort.Slice(markers, func(i, j int) bool {
		return markers[i].Position < markers[j].Position
	})
	return markers
}

// classifyMarker decides which persona a matched marker names.
// Anything naming neither persona is a joint turn.
func classifyMarker(match string) Attribution {
	lower := strings.ToLower(match)
	switch {
	case strings.Contains(lower, "alexandria"):
		return AttrAlexandria
	case strings.Contains(lower, "kim"):
		return AttrKim
	default:
		return AttrJoint
	}
}

func hasMarkerNear(markers []Marker, pos int) bool {
	for _, m := range markers {
		d := pos - m.Position
		if d < 0 {
			d = -d
		}
		if d <= dedupeWindow {
			return true
		}
	}
	return false
}
