package lineedit_test

import (
	"testing"

	"blockpad/internal/lineedit"
)

func TestIndent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "   plain"},
		{"- item", "   - item"},
		{"2. item", "   - item"}, // numbered becomes a dash when indenting
		{"a\nb", "   a\n   b"},
	}
	for _, tt := range tests {
		if got := lineedit.Indent(tt.in); got != tt.want {
			t.Errorf("Indent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOutdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"   x", "x"},
		{"    x", "x"},  // up to four spaces
		{"     x", " x"} /* five spaces: only four stripped */,
		{"\tx", "x"},
		{"x", "x"},
		{"  a\n   b", "a\nb"},
	}
	for _, tt := range tests {
		if got := lineedit.Outdent(tt.in); got != tt.want {
			t.Errorf("Outdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToggleWrapAddsAndRemoves(t *testing.T) {
	line, s, e := lineedit.ToggleWrap("make this bold", 5, 9, "**")
	if line != "make **this** bold" {
		t.Fatalf("wrap: %q", line)
	}
	if s != 7 || e != 11 {
		t.Fatalf("wrap selection: %d..%d", s, e)
	}

	line, s, e = lineedit.ToggleWrap(line, s, e, "**")
	if line != "make this bold" {
		t.Errorf("unwrap: %q", line)
	}
	if s != 5 || e != 9 {
		t.Errorf("unwrap selection: %d..%d", s, e)
	}
}

// Applying the toggle twice returns the original line byte for byte.
func TestToggleWrapIdempotent(t *testing.T) {
	orig := "some styled text"
	for _, delim := range []string{"**", "*", "_", "<u>"} {
		line, s, e := lineedit.ToggleWrap(orig, 5, 11, delim)
		line, s, e = lineedit.ToggleWrap(line, s, e, delim)
		if line != orig {
			t.Errorf("double toggle with %q: %q != %q", delim, line, orig)
		}
		if s != 5 || e != 11 {
			t.Errorf("selection after double toggle with %q: %d..%d", delim, s, e)
		}
	}
}

func TestToggleWrapEmptySelectionUsesPlaceholder(t *testing.T) {
	line, s, e := lineedit.ToggleWrap("ab", 1, 1, "**")
	if line != "a**text**b" {
		t.Errorf("got %q", line)
	}
	if line[s:e] != "text" {
		t.Errorf("selection %d..%d = %q", s, e, line[s:e])
	}
}

func TestToggleWrapRejectsTripleStar(t *testing.T) {
	// Inside ***x*** every ** candidate touches a third star, so the
	// selection counts as unwrapped and gets a fresh pair instead of
	// stripping stars that belong to the italic layer.
	line, _, _ := lineedit.ToggleWrap("***x***", 3, 4, "**")
	if line != "*****x*****" {
		t.Errorf("got %q, want a fresh pair around the selection", line)
	}
}

func TestFindLinkAt(t *testing.T) {
	src := "go [here](https://e.com) now"
	l, ok := lineedit.FindLinkAt(src, 6)
	if !ok {
		t.Fatal("caret inside link not detected")
	}
	if l.Label != "here" || l.URL != "https://e.com" {
		t.Errorf("link = %+v", l)
	}
	if l.Start != 3 || l.End != 24 {
		t.Errorf("span = %d..%d", l.Start, l.End)
	}

	if _, ok := lineedit.FindLinkAt(src, 27); ok {
		t.Error("caret past the link must not match")
	}
	if _, ok := lineedit.FindLinkAt("no link here", 5); ok {
		t.Error("plain text must not match")
	}
	if _, ok := lineedit.FindLinkAt(`escaped \[x](y)`, 10); ok {
		t.Error("escaped bracket must not match")
	}
}

func TestInsertLink(t *testing.T) {
	out, s, e := lineedit.InsertLink("click me", 6, 8, "/docs")
	if out != "click [me](/docs)" {
		t.Fatalf("got %q", out)
	}
	if out[s:e] != "me" {
		t.Errorf("label selection %d..%d = %q", s, e, out[s:e])
	}

	out, s, e = lineedit.InsertLink("x", 1, 1, "/p")
	if out != "x[link text](/p)" {
		t.Errorf("placeholder insert: %q", out)
	}
	if out[s:e] != "link text" {
		t.Errorf("placeholder selection: %q", out[s:e])
	}
}

func TestReplaceAndRemoveLink(t *testing.T) {
	src := "see [docs](/old) end"
	l, ok := lineedit.FindLinkAt(src, 8)
	if !ok {
		t.Fatal("setup: link not found")
	}
	if got := lineedit.ReplaceLinkURL(src, l, "/new"); got != "see [docs](/new) end" {
		t.Errorf("replace: %q", got)
	}
	got, caret := lineedit.RemoveLink(src, l)
	if got != "see docs end" {
		t.Errorf("remove: %q", got)
	}
	if caret != 8 {
		t.Errorf("caret after remove = %d", caret)
	}
}
