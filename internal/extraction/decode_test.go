package extraction

import (
	"strings"
	"testing"
)

func TestExtractTextPlainPassthrough(t *testing.T) {
	got, err := extractText(".md", []byte("# Title\n\nbody"))
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	if got != "# Title\n\nbody" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextRejectsInvalidUTF8(t *testing.T) {
	if _, err := extractText(".txt", []byte{0xff, 0xfe, 0x00}); err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
}

func TestStripTagsEmptyTag(t *testing.T) {
	for _, markup := range []string{"a <> b", "a <// > b", "< >only<>"} {
		got, err := extractText(".html", []byte(markup))
		if err != nil {
			t.Fatalf("extractText(%q): %v", markup, err)
		}
		if got == "" {
			t.Fatalf("extractText(%q) lost all text", markup)
		}
	}
}

func TestStripTagsDropsScriptAndStyle(t *testing.T) {
	markup := `<html><style>p { color: red; }</style><p>kept</p><script>alert("no")</script></html>`
	got := stripTags(markup)
	if !strings.Contains(got, "kept") || strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Fatalf("stripTags = %q, want kept text without script/style bodies", got)
	}
}

func TestStripTagsDecodesEntities(t *testing.T) {
	got := stripTags(`<p>Fish &amp; Chips &lt;daily&gt; &#39;special&#39; &copy; &#8212; menu</p>`)
	for _, want := range []string{"Fish & Chips", "<daily>", "'special'", "©", "—"} {
		if !strings.Contains(got, want) {
			t.Fatalf("stripTags = %q, missing %q", got, want)
		}
	}
}
