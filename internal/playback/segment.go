package playback

import (
	"regexp"
	"strings"
)

// Segment is one paragraph-sized unit of text scheduled for independent
// speech synthesis. Index defines play order and never changes.
type Segment struct {
	Index int
	Text  string
}

var blankLines = regexp.MustCompile(`\n\n+`)

// Split cuts story text into ordered segments at blank-line boundaries.
// Pieces are trimmed and whitespace-only pieces dropped; text without blank
// lines becomes a single segment.
func Split(text string) []Segment {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	var segments []Segment
	for _, piece := range blankLines.Split(normalized, -1) {
		trimmed := strings.TrimSpace(piece)
		if trimmed == "" {
			continue
		}
		segments = append(segments, Segment{Index: len(segments), Text: trimmed})
	}
	return segments
}
