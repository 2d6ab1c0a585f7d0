package extraction

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

// extractText converts raw file bytes to plain text based on extension.
// Markup formats are stripped to their text content; everything else is
// treated as already-plain text.
func extractText(ext string, raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	text := string(raw)
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return stripTags(text), nil
	default:
		return text, nil
	}
}

// stripTags removes HTML/XML markup, keeping element text with whitespace
// between elements. Script and style bodies are dropped entirely.
func stripTags(markup string) string {
	var b strings.Builder
	b.Grow(len(markup))

	inTag := false
	skipDepth := 0
	var tagName strings.Builder
	for i := 0; i < len(markup); i++ {
		c := markup[i]
		switch {
		case c == '<':
			inTag = true
			tagName.Reset()
		case c == '>' && inTag:
			inTag = false
			// An empty tag body ("<>") has no name to inspect.
			if fields := strings.Fields(tagName.String()); len(fields) > 0 {
				name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
				closing := strings.HasPrefix(fields[0], "/")
				if name == "script" || name == "style" {
					if closing {
						if skipDepth > 0 {
							skipDepth--
						}
					} else {
						skipDepth++
					}
				}
			}
			b.WriteByte(' ')
		case inTag:
			tagName.WriteByte(c)
		case skipDepth == 0:
			b.WriteByte(c)
		}
	}
	return html.UnescapeString(b.String())
}
