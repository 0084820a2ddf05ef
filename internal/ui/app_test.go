package ui

import "testing"

func TestInsertRuneAt(t *testing.T) {
	cases := []struct {
		in   string
		col  int
		r    rune
		want string
	}{
		{"", 0, 'a', "a"},
		{"bc", 0, 'a', "abc"},
		{"ab", 2, 'c', "abc"},
		{"ab", 99, 'c', "abc"},
		{"héllo", 2, 'x', "héxllo"},
	}
	for _, c := range cases {
		if got := insertRuneAt(c.in, c.col, c.r); got != c.want {
			t.Errorf("insertRuneAt(%q, %d, %q) = %q, want %q", c.in, c.col, c.r, got, c.want)
		}
	}
}

func TestDeleteRune(t *testing.T) {
	cases := []struct {
		in   string
		col  int
		want string
	}{
		{"abc", 1, "ac"},
		{"abc", 0, "bc"},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
		{"héllo", 1, "hllo"},
		{"", 0, ""},
	}
	for _, c := range cases {
		if got := deleteRune(c.in, c.col); got != c.want {
			t.Errorf("deleteRune(%q, %d) = %q, want %q", c.in, c.col, got, c.want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one" {
		t.Errorf("firstLine = %q", got)
	}
	if got := firstLine("solo"); got != "solo" {
		t.Errorf("firstLine = %q", got)
	}
}

func TestPadTo(t *testing.T) {
	if got := padTo("ab", 5); got != "ab   " {
		t.Errorf("padTo short = %q", got)
	}
	if got := padTo("abcdef", 3); got != "abcdef" {
		t.Errorf("padTo long = %q", got)
	}
}

func TestDraftDiffers(t *testing.T) {
	// Normalized session form of the same shifted paragraph.
	current := "<!-- align:center -->\nshifted\n<!-- /align -->"

	// A draft journaled in the legacy aligned-div form is the same
	// document and must not prompt for recovery.
	legacy := `<div style="text-align: center">shifted</div>`
	if draftDiffers(legacy, current) {
		t.Error("equivalent legacy draft reported as differing")
	}

	if !draftDiffers("other text entirely", current) {
		t.Error("diverging draft reported as matching")
	}
}
