// Package inline tokenizes a single line of text into formatting spans
// for live preview. It never fails: malformed delimiters degrade to
// literal text.
package inline

import (
	"regexp"
	"strings"
)

type SpanKind int

const (
	SpanText SpanKind = iota
	SpanCode
	SpanBold
	SpanItalic
	SpanUnderline
	SpanStrike
	SpanLink
)

// Span is one node of the inline formatting tree. Text carries literal
// content for SpanText and SpanCode; container kinds use Children.
type Span struct {
	Kind     SpanKind
	Text     string
	URL      string
	Children []Span
}

type LineKind int

const (
	LinePlain LineKind = iota
	LineHeading
	LineBlockquote
	LineListItem
	LineDivider
)

// Line is the rendered form of one text line. A line is at most one of
// heading, blockquote, list item, divider or plain; inline tokenization
// applies to the content portion only.
type Line struct {
	Kind    LineKind
	Level   int    // heading level, 1..6
	Ordered bool   // list item numbering
	Number  int    // ordered list number
	Marker  string // unordered list marker as typed
	Task    bool   // list item carries a checkbox
	Checked bool
	Spans   []Span
}

var (
	headingRe     = regexp.MustCompile(`^(#{1,6}) (.*)$`)
	unorderedRe   = regexp.MustCompile(`^([-*+]) (.*)$`)
	orderedRe     = regexp.MustCompile(`^(\d+)\. (.*)$`)
	lineDividerRe = regexp.MustCompile(`^(\*{3,}|-{3,}|_{3,})$`)
	taskRe        = regexp.MustCompile(`^\[( |[xX])\] (.*)$`)
	linkRe        = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)`)
)

// RenderLine classifies one line and tokenizes its content portion.
func RenderLine(text string) Line {
	if lineDividerRe.MatchString(text) {
		return Line{Kind: LineDivider}
	}
	if m := headingRe.FindStringSubmatch(text); m != nil {
		return Line{Kind: LineHeading, Level: len(m[1]), Spans: Tokenize(m[2])}
	}
	if strings.HasPrefix(text, "> ") {
		return Line{Kind: LineBlockquote, Spans: Tokenize(text[2:])}
	}
	if m := unorderedRe.FindStringSubmatch(text); m != nil {
		ln := Line{Kind: LineListItem, Marker: m[1]}
		ln.applyTask(m[2])
		return ln
	}
	if m := orderedRe.FindStringSubmatch(text); m != nil {
		ln := Line{Kind: LineListItem, Ordered: true, Number: atoi(m[1])}
		ln.applyTask(m[2])
		return ln
	}
	return Line{Kind: LinePlain, Spans: Tokenize(text)}
}

func (ln *Line) applyTask(content string) {
	if m := taskRe.FindStringSubmatch(content); m != nil {
		ln.Task = true
		ln.Checked = m[1] != " "
		content = m[2]
	}
	ln.Spans = Tokenize(content)
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// Tokenize scans for inline tokens in priority order: code, underline,
// bold, strikethrough, italic, link. Unmatched or empty-span delimiters
// are emitted as literal text and scanning resumes one character later.
func Tokenize(s string) []Span {
	var spans []Span
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			spans = append(spans, Span{Kind: SpanText, Text: lit.String()})
			lit.Reset()
		}
	}

	i := 0
	for i < len(s) {
		escaped := i > 0 && s[i-1] == '\\'
		if !escaped {
			if sp, n, ok := matchToken(s, i); ok {
				flush()
				spans = append(spans, sp)
				i += n
				continue
			}
		}
		lit.WriteByte(s[i])
		i++
	}
	flush()
	return spans
}

// matchToken attempts each token type at position i. At an equal start
// offset the longer delimiter wins, so ** is tried before *.
func matchToken(s string, i int) (Span, int, bool) {
	switch {
	case s[i] == '`':
		return matchPair(s, i, "`", SpanCode, false)
	case strings.HasPrefix(s[i:], "<u>"):
		return matchTag(s, i)
	case strings.HasPrefix(s[i:], "**"):
		return matchPair(s, i, "**", SpanBold, true)
	case strings.HasPrefix(s[i:], "__"):
		return matchPair(s, i, "__", SpanBold, true)
	case strings.HasPrefix(s[i:], "~~"):
		return matchPair(s, i, "~~", SpanStrike, true)
	case s[i] == '*':
		return matchPair(s, i, "*", SpanItalic, true)
	case s[i] == '_':
		return matchPair(s, i, "_", SpanItalic, true)
	case s[i] == '[':
		return matchLink(s, i)
	}
	return Span{}, 0, false
}

func matchPair(s string, i int, delim string, kind SpanKind, recurse bool) (Span, int, bool) {
	start := i + len(delim)
	close := findUnescaped(s, start, delim)
	if close < 0 {
		return Span{}, 0, false
	}
	inner := s[start:close]
	if strings.TrimSpace(inner) == "" {
		return Span{}, 0, false
	}
	sp := Span{Kind: kind}
	if recurse {
		sp.Children = Tokenize(inner)
	} else {
		sp.Text = inner
	}
	return sp, close + len(delim) - i, true
}

func matchTag(s string, i int) (Span, int, bool) {
	start := i + len("<u>")
	close := strings.Index(s[start:], "</u>")
	if close < 0 {
		return Span{}, 0, false
	}
	inner := s[start : start+close]
	if strings.TrimSpace(inner) == "" {
		return Span{}, 0, false
	}
	return Span{Kind: SpanUnderline, Children: Tokenize(inner)},
		len("<u>") + close + len("</u>"), true
}

func matchLink(s string, i int) (Span, int, bool) {
	m := linkRe.FindStringSubmatch(s[i:])
	if m == nil {
		return Span{}, 0, false
	}
	label, url := m[1], m[2]
	if strings.TrimSpace(label) == "" {
		return Span{}, 0, false
	}
	if !SafeURL(url) {
		// Unsafe destinations render as the literal source text.
		return Span{Kind: SpanText, Text: m[0]}, len(m[0]), true
	}
	return Span{Kind: SpanLink, URL: url, Children: Tokenize(label)}, len(m[0]), true
}

func findUnescaped(s string, from int, delim string) int {
	for j := from; j+len(delim) <= len(s); j++ {
		if s[j:j+len(delim)] == delim && s[j-1] != '\\' {
			return j
		}
	}
	return -1
}

// SafeURL reports whether a link destination is allowed to render as a
// real link: absolute http/https/mailto/tel, or relative and fragment
// paths. Everything else stays literal text.
func SafeURL(u string) bool {
	lu := strings.ToLower(strings.TrimSpace(u))
	for _, scheme := range []string{"http:", "https:", "mailto:", "tel:"} {
		if strings.HasPrefix(lu, scheme) {
			return true
		}
	}
	for _, prefix := range []string{"/", "./", "../", "#"} {
		if strings.HasPrefix(lu, prefix) {
			return true
		}
	}
	return false
}
