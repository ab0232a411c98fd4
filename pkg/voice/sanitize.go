package voice

import (
	"regexp"
	"strings"
)

// Sanitization regexes, compiled once. The application order in Sanitize is
// load-bearing: the suggestions block is structured data and must go before
// any generic markdown stripping, and speaker prefixes must go before the
// emphasis collapse that would otherwise unwrap them into speakable text.
var (
	// Trailing machine-readable suggestions block appended by the chat
	// backend: a line-start SUGGESTIONS: marker followed by a JSON array,
	// running to end of text.
	suggestionsRe = regexp.MustCompile(`(?mi)^suggestions:\s*\[[\s\S]*\z`)

	headingRe = regexp.MustCompile(`(?m)^#{1,6}[ \t]+`)

	boldRe        = regexp.MustCompile(`\*\*([^*]+?)\*\*`)
	boldUnderRe   = regexp.MustCompile(`__([^_]+?)__`)
	italicRe      = regexp.MustCompile(`\*([^*\n]+?)\*`)
	italicUnderRe = regexp.MustCompile(`_([^_\n]+?)_`)

	imageRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe  = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`([^`\n]*)`")

	blockquoteRe = regexp.MustCompile(`(?m)^>[ \t]?`)
	hrRe         = regexp.MustCompile(`(?m)^[ \t]*(?:-{3,}|\*{3,}|_{3,})[ \t]*$`)

	tableRowRe = regexp.MustCompile(`(?m)^[ \t]*\|.*\|[ \t]*$\n?`)

	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips presentation markup from a response, leaving plain text
// suitable for speech synthesis. It is pure and idempotent.
//
// Fenced code blocks and tables are removed entirely rather than narrated:
// neither reads coherently aloud. Image alt text is dropped for the same
// reason; link text is kept.
func Sanitize(text string) string {
	// 1. Trailing suggestions block.
	text = suggestionsRe.ReplaceAllString(text, "")

	// 2. Speaker attribution prefixes, so a persona never reads its own name.
	for _, re := range markerPatterns {
		text = re.ReplaceAllString(text, "")
	}

	// 3. Heading markers, keeping the heading text.
	text = headingRe.ReplaceAllString(text, "")

	// 4. Emphasis markers, keeping inner text. Nested emphasis needs more
	// than one pass: the bold pattern cannot see across an inner italic
	// span, so unwrap until the text is stable. Every match removes
	// delimiter characters, so the loop terminates.
	for {
		prev := text
		text = boldRe.ReplaceAllString(text, "$1")
		text = boldUnderRe.ReplaceAllString(text, "$1")
		text = italicRe.ReplaceAllString(text, "$1")
		text = italicUnderRe.ReplaceAllString(text, "$1")
		if text == prev {
			break
		}
	}

	// 5. Images dropped entirely, links collapsed to their text.
	text = imageRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")

	// 6. Fenced code blocks dropped, inline code unwrapped.
	text = fencedCodeRe.ReplaceAllString(text, "")
	text = inlineCodeRe.ReplaceAllString(text, "$1")

	// 7. Block quotes and horizontal rules.
	text = blockquoteRe.ReplaceAllString(text, "")
	text = hrRe.ReplaceAllString(text, "")

	// 8. Table rows, separator rows included.
	text = tableRowRe.ReplaceAllString(text, "")

	// 9. Collapse runs of blank lines, then trim.
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
