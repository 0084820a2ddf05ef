package lineedit

import (
	"regexp"
	"strings"
)

// indentUnit is the fixed indent step applied by Tab.
const indentUnit = "   "

// placeholder inserted when a formatting shortcut fires on an empty
// selection.
const emptySelectionText = "text"

// LinkPlaceholder is the label used when a link is inserted over an
// empty selection.
const LinkPlaceholder = "link text"

// linkScanLimit bounds the backward scan when detecting whether the
// caret sits inside an existing link.
const linkScanLimit = 500

var outdentRe = regexp.MustCompile(`^( {1,4}|\t)`)

// Indent shifts every line of the selection right by one indent unit.
// A numbered-list prefix is rewritten to a dash: nested numbering is
// not tracked.
func Indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if m := orderedLineRe.FindStringSubmatch(line); m != nil {
			line = m[1] + "- " + m[3]
		}
		lines[i] = indentUnit + line
	}
	return strings.Join(lines, "\n")
}

// Outdent strips up to one existing indent (one to four spaces, or a
// tab) from every line of the selection.
func Outdent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = outdentRe.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}

// ToggleWrap toggles a delimiter pair (bold, italic, underline) around
// the selection on a single line. If the selection is already inside a
// matching pair the pair is removed and the inner text re-selected;
// otherwise the selection (or a placeholder when empty) is wrapped and
// the inner text selected. The wrapped-pair search never crosses the
// line boundary.
func ToggleWrap(line string, selStart, selEnd int, delim string) (string, int, int) {
	r := []rune(line)
	do := []rune(delim)
	dc := []rune(closingDelim(delim))
	selStart = clamp(selStart, 0, len(r))
	selEnd = clamp(selEnd, selStart, len(r))

	open := searchDelim(r, do, selStart-len(do), -1)
	close := searchDelim(r, dc, selEnd, 1)
	if open >= 0 && close >= 0 {
		inner := r[open+len(do) : close]
		out := make([]rune, 0, len(r))
		out = append(out, r[:open]...)
		out = append(out, inner...)
		out = append(out, r[close+len(dc):]...)
		return string(out), open, open + len(inner)
	}

	sel := r[selStart:selEnd]
	if len(sel) == 0 {
		sel = []rune(emptySelectionText)
	}
	out := make([]rune, 0, len(r)+len(do)+len(dc)+len(sel))
	out = append(out, r[:selStart]...)
	out = append(out, do...)
	out = append(out, sel...)
	out = append(out, dc...)
	out = append(out, r[selEnd:]...)
	return string(out), selStart + len(do), selStart + len(do) + len(sel)
}

// closingDelim maps an opening delimiter to its closing form; only the
// underline tag differs.
func closingDelim(delim string) string {
	if delim == "<u>" {
		return "</u>"
	}
	return delim
}

// searchDelim walks from the start position in the given direction
// looking for the delimiter. A ** occurrence adjacent to another * is
// rejected so **bold** is not conflated with ***also-italic***.
func searchDelim(r, d []rune, from, dir int) int {
	for p := from; p >= 0 && p+len(d) <= len(r); p += dir {
		if !runesAt(r, p, d) {
			continue
		}
		if string(d) == "**" {
			if p > 0 && r[p-1] == '*' {
				continue
			}
			if p+2 < len(r) && r[p+2] == '*' {
				continue
			}
		}
		return p
	}
	return -1
}

func runesAt(r []rune, p int, d []rune) bool {
	for i, c := range d {
		if r[p+i] != c {
			return false
		}
	}
	return true
}

// Link is an existing [label](url) span located in a line. Start and
// End are rune offsets covering the whole span.
type Link struct {
	Start int
	End   int
	Label string
	URL   string
}

var fullLinkRe = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)`)

// FindLinkAt reports the link span containing the caret, scanning
// backward a bounded distance for an unescaped opening bracket and
// matching the full link pattern forward from there.
func FindLinkAt(line string, caret int) (Link, bool) {
	r := []rune(line)
	caret = clamp(caret, 0, len(r))
	lo := caret - linkScanLimit
	if lo < 0 {
		lo = 0
	}
	start := caret
	if start >= len(r) {
		start = len(r) - 1
	}
	for p := start; p >= lo; p-- {
		if r[p] != '[' || (p > 0 && r[p-1] == '\\') {
			continue
		}
		m := fullLinkRe.FindStringSubmatch(string(r[p:]))
		if m == nil {
			return Link{}, false
		}
		end := p + runeLen(m[0])
		if caret > end {
			return Link{}, false
		}
		return Link{Start: p, End: end, Label: m[1], URL: m[2]}, true
	}
	return Link{}, false
}

// InsertLink wraps the selection (or a placeholder) as a new link and
// returns the line with the label selected.
func InsertLink(line string, selStart, selEnd int, url string) (string, int, int) {
	r := []rune(line)
	selStart = clamp(selStart, 0, len(r))
	selEnd = clamp(selEnd, selStart, len(r))
	label := string(r[selStart:selEnd])
	if label == "" {
		label = LinkPlaceholder
	}
	out := string(r[:selStart]) + "[" + label + "](" + url + ")" + string(r[selEnd:])
	labelStart := selStart + 1
	return out, labelStart, labelStart + runeLen(label)
}

// ReplaceLinkURL rewrites the URL of an existing link span.
func ReplaceLinkURL(line string, l Link, url string) string {
	r := []rune(line)
	return string(r[:l.Start]) + "[" + l.Label + "](" + url + ")" + string(r[l.End:])
}

// RemoveLink replaces a link span with its label text.
func RemoveLink(line string, l Link) (string, int) {
	r := []rune(line)
	out := string(r[:l.Start]) + l.Label + string(r[l.End:])
	return out, l.Start + runeLen(l.Label)
}
