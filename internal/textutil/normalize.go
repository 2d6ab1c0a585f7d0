package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize converts raw document text to the canonical form used for
// length accounting and chunking: NFKC composition, narrow-width folding,
// control characters dropped, runs of whitespace collapsed to single
// spaces, newlines preserved as paragraph separators.
func Normalize(raw string) string {
	folded := width.Narrow.String(norm.NFKC.String(raw))

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := false
	lastNewline := false
	for _, r := range folded {
		switch {
		case r == '\n':
			if !lastNewline {
				b.WriteByte('\n')
			}
			lastNewline = true
			lastSpace = true
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
		case unicode.IsControl(r) || r == utf8.RuneError:
			// drop
		default:
			b.WriteRune(r)
			lastSpace = false
			lastNewline = false
		}
	}
	return strings.TrimSpace(b.String())
}

// RuneLength counts runes, the unit the chunker and max-length cap use.
func RuneLength(s string) int {
	return utf8.RuneCountInString(s)
}
