package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// BreakMarker is the two-character manual line break hint ("\" followed by "n")
// emitted upstream. Native newlines are not treated as breaks.
const BreakMarker = `\n`

// OrphanMaxRunes is the longest segment that is merged into a neighbour
// instead of standing on its own line.
const OrphanMaxRunes = 3

// Lines splits raw caption text into display lines.
//
// The text is split on BreakMarker, segments are trimmed and empty ones dropped.
// A segment of at most OrphanMaxRunes characters is prepended to the following
// segment, or appended to the previous output line when it is the last one.
// A lone short segment is kept as-is. Lines never mutates its input and always
// returns the same result for the same text.
func Lines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var segments []string
	for _, part := range strings.Split(text, BreakMarker) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segments = append(segments, part)
	}

	out := make([]string, 0, len(segments))
	for i := 0; i < len(segments); i++ {
		segment := segments[i]
		if runeLen(segment) <= OrphanMaxRunes {
			if i+1 < len(segments) {
				segments[i+1] = segment + segments[i+1]
				continue
			}
			if len(out) > 0 {
				out[len(out)-1] += segment
				continue
			}
		}
		out = append(out, segment)
	}
	return out
}

// runeLen counts user-visible characters; decomposed kana with combining
// marks count once after NFC composition.
func runeLen(s string) int {
	return utf8.RuneCountInString(norm.NFC.String(s))
}
