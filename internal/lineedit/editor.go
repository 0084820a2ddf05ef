// Package lineedit is the per-text-block line editor. The lines slice is
// the authoritative state; any UI is a projection re-synced after every
// mutation. Columns are rune offsets.
package lineedit

import (
	"regexp"
	"strconv"
	"strings"
)

// Editor manages the lines of one text block. At most one line is in
// edit mode at a time.
type Editor struct {
	lines  []string
	active int // -1 when no line is being edited
}

// Caret is a caret position after an operation.
type Caret struct {
	Line int
	Col  int
}

var (
	unorderedLineRe = regexp.MustCompile(`^(\s*)([-*+]) (.*)$`)
	orderedLineRe   = regexp.MustCompile(`^(\s*)(\d+)\. (.*)$`)
)

// New derives an editor from block content. Content joined back with
// newlines always equals the block content.
func New(content string) *Editor {
	return &Editor{lines: strings.Split(content, "\n"), active: -1}
}

func (e *Editor) Content() string { return strings.Join(e.lines, "\n") }

func (e *Editor) Lines() []string {
	out := make([]string, len(e.lines))
	copy(out, e.lines)
	return out
}

func (e *Editor) Len() int { return len(e.lines) }

func (e *Editor) Line(i int) string {
	if i < 0 || i >= len(e.lines) {
		return ""
	}
	return e.lines[i]
}

// Active returns the index of the line in edit mode, or -1.
func (e *Editor) Active() int { return e.active }

func (e *Editor) Activate(i int) {
	if i >= 0 && i < len(e.lines) {
		e.active = i
	}
}

func (e *Editor) Deactivate() { e.active = -1 }

// SetLine replaces a line in place; used for character input that does
// not contain a newline.
func (e *Editor) SetLine(i int, text string) {
	if i >= 0 && i < len(e.lines) {
		e.lines[i] = text
	}
}

// CommitLine writes raw input back into line i. Raw text containing
// newlines (a paste) is split and spliced in place of the original
// line; the last pasted line becomes active with the caret at its end.
func (e *Editor) CommitLine(i int, raw string) Caret {
	if i < 0 || i >= len(e.lines) {
		return Caret{}
	}
	if !strings.Contains(raw, "\n") {
		e.lines[i] = raw
		return Caret{Line: i, Col: runeLen(raw)}
	}
	parts := strings.Split(raw, "\n")
	e.lines = splice(e.lines, i, 1, parts...)
	last := i + len(parts) - 1
	e.active = last
	return Caret{Line: last, Col: runeLen(parts[len(parts)-1])}
}

// Enter splits line i at col. A line that is a list item with content
// continues the list on the new line (same marker, or the next ordered
// number); a bare list marker terminates the list by deleting the line.
func (e *Editor) Enter(i, col int) Caret {
	if i < 0 || i >= len(e.lines) {
		return Caret{}
	}
	r := []rune(e.lines[i])
	col = clamp(col, 0, len(r))
	before, after := string(r[:col]), string(r[col:])

	if prefix, empty := continuationPrefix(before); prefix != "" || empty {
		if empty {
			return e.terminateList(i)
		}
		newLine := prefix + strings.TrimLeft(after, " \t")
		e.lines[i] = before
		e.lines = splice(e.lines, i+1, 0, newLine)
		e.active = i + 1
		return Caret{Line: i + 1, Col: runeLen(prefix)}
	}

	e.lines[i] = before
	e.lines = splice(e.lines, i+1, 0, after)
	e.active = i + 1
	return Caret{Line: i + 1, Col: 0}
}

// continuationPrefix inspects the text before the caret. It returns the
// prefix for the next list line when the line is a list item with
// content, or empty=true when the line is a bare marker.
func continuationPrefix(before string) (prefix string, empty bool) {
	if m := unorderedLineRe.FindStringSubmatch(before); m != nil {
		if strings.TrimSpace(m[3]) == "" {
			return "", true
		}
		return m[1] + m[2] + " ", false
	}
	if m := orderedLineRe.FindStringSubmatch(before); m != nil {
		if strings.TrimSpace(m[3]) == "" {
			return "", true
		}
		n, _ := strconv.Atoi(m[2])
		return m[1] + strconv.Itoa(n+1) + ". ", false
	}
	// Bare markers without trailing content ("- " with the caret right
	// after the space, or "-" alone) don't match the content regexes.
	trimmed := strings.TrimSpace(before)
	if trimmed == "-" || trimmed == "*" || trimmed == "+" {
		return "", true
	}
	return "", false
}

func (e *Editor) terminateList(i int) Caret {
	e.lines = splice(e.lines, i, 1)
	if len(e.lines) == 0 {
		e.lines = []string{""}
	}
	if i < len(e.lines) {
		e.active = i
		return Caret{Line: i, Col: 0}
	}
	last := len(e.lines) - 1
	e.active = last
	return Caret{Line: last, Col: runeLen(e.lines[last])}
}

// MergeWithPrevious implements backspace at column 0: the line is
// appended to the previous one and removed, caret at the junction.
func (e *Editor) MergeWithPrevious(i int) (Caret, bool) {
	if i <= 0 || i >= len(e.lines) {
		return Caret{}, false
	}
	junction := runeLen(e.lines[i-1])
	e.lines[i-1] += e.lines[i]
	e.lines = splice(e.lines, i, 1)
	e.active = i - 1
	return Caret{Line: i - 1, Col: junction}, true
}

// MergeWithNext implements delete at end of line: the next line is
// appended to this one and removed, caret stays at the junction.
func (e *Editor) MergeWithNext(i int) (Caret, bool) {
	if i < 0 || i >= len(e.lines)-1 {
		return Caret{}, false
	}
	junction := runeLen(e.lines[i])
	e.lines[i] += e.lines[i+1]
	e.lines = splice(e.lines, i+1, 1)
	e.active = i
	return Caret{Line: i, Col: junction}, true
}

// ActivatePrevious moves editing to the line above, caret at its end.
func (e *Editor) ActivatePrevious(i int) (Caret, bool) {
	if i <= 0 || i >= len(e.lines) {
		return Caret{}, false
	}
	e.active = i - 1
	return Caret{Line: i - 1, Col: runeLen(e.lines[i-1])}, true
}

// ActivateNext moves editing to the line below, caret at its end.
func (e *Editor) ActivateNext(i int) (Caret, bool) {
	if i < 0 || i >= len(e.lines)-1 {
		return Caret{}, false
	}
	e.active = i + 1
	return Caret{Line: i + 1, Col: runeLen(e.lines[i+1])}, true
}

func splice(s []string, at, del int, ins ...string) []string {
	out := make([]string, 0, len(s)-del+len(ins))
	out = append(out, s[:at]...)
	out = append(out, ins...)
	out = append(out, s[at+del:]...)
	return out
}

func runeLen(s string) int { return len([]rune(s)) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
