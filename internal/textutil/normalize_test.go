package textutil_test

import (
	"testing"

	"verso/internal/textutil"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	got := textutil.Normalize("hello\t\t  world  ")
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizePreservesSingleNewlines(t *testing.T) {
	got := textutil.Normalize("first line\n\n\nsecond line")
	if got != "first line\nsecond line" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeFoldsFullWidthForms(t *testing.T) {
	// Full-width latin plus a compatibility ligature, both NFKC targets.
	got := textutil.Normalize("Ｈｅｌｌｏ ﬁle")
	if got != "Hello file" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeDropsControlCharacters(t *testing.T) {
	got := textutil.Normalize("a\x00b\x07c")
	if got != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	if got := textutil.Normalize("   \n\t  "); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"  report.md ":        "report.md",
		"a/b\\c:d.txt":        "a-b-c-d.txt",
		"what?.md":            "what.md",
		"<angle>|pipe\".html": "anglepipe.html",
	}
	for in, want := range cases {
		if got := textutil.SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"KB Docs":  "kb_docs",
		"kb-42":    "kb-42",
		"":         "unknown",
		"___":      "unknown",
		"Über KB!": "ber_kb",
	}
	for in, want := range cases {
		if got := textutil.SanitizeToken(in); got != want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRuneLengthCountsRunes(t *testing.T) {
	if got := textutil.RuneLength("héllo"); got != 5 {
		t.Fatalf("got %d", got)
	}
	if got := textutil.RuneLength(""); got != 0 {
		t.Fatalf("got %d", got)
	}
}
