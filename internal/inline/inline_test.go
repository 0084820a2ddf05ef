package inline_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"blockpad/internal/inline"
)

func text(s string) inline.Span { return inline.Span{Kind: inline.SpanText, Text: s} }

func TestTokenizeBasic(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []inline.Span
	}{
		{
			name: "plain",
			in:   "just words",
			want: []inline.Span{text("just words")},
		},
		{
			name: "bold",
			in:   "a **b** c",
			want: []inline.Span{
				text("a "),
				{Kind: inline.SpanBold, Children: []inline.Span{text("b")}},
				text(" c"),
			},
		},
		{
			name: "bold underscore form",
			in:   "__b__",
			want: []inline.Span{{Kind: inline.SpanBold, Children: []inline.Span{text("b")}}},
		},
		{
			name: "italic",
			in:   "*i*",
			want: []inline.Span{{Kind: inline.SpanItalic, Children: []inline.Span{text("i")}}},
		},
		{
			name: "strikethrough",
			in:   "~~gone~~",
			want: []inline.Span{{Kind: inline.SpanStrike, Children: []inline.Span{text("gone")}}},
		},
		{
			name: "underline tag",
			in:   "<u>under</u>",
			want: []inline.Span{{Kind: inline.SpanUnderline, Children: []inline.Span{text("under")}}},
		},
		{
			name: "code span is literal inside",
			in:   "`**not bold**`",
			want: []inline.Span{{Kind: inline.SpanCode, Text: "**not bold**"}},
		},
		{
			name: "nested italic in bold",
			in:   "**a *b* c**",
			want: []inline.Span{{Kind: inline.SpanBold, Children: []inline.Span{
				text("a "),
				{Kind: inline.SpanItalic, Children: []inline.Span{text("b")}},
				text(" c"),
			}}},
		},
		{
			name: "unmatched delimiter stays literal",
			in:   "a ** b",
			want: []inline.Span{text("a ** b")},
		},
		{
			name: "empty span is not a match",
			in:   "a **** b",
			want: []inline.Span{text("a **** b")},
		},
		{
			name: "escaped delimiter",
			in:   `\*not italic\*`,
			want: []inline.Span{text(`\*not italic\*`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inline.Tokenize(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestTokenizeLinks(t *testing.T) {
	got := inline.Tokenize("see [docs](https://example.com) here")
	want := []inline.Span{
		text("see "),
		{Kind: inline.SpanLink, URL: "https://example.com", Children: []inline.Span{text("docs")}},
		text(" here"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("link mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizeUnsafeLinkStaysLiteral(t *testing.T) {
	got := inline.Tokenize("[x](javascript:alert(1))")
	if len(got) == 0 || got[0].Kind != inline.SpanText {
		t.Fatalf("unsafe link must render literally, got %+v", got)
	}
}

func TestSafeURL(t *testing.T) {
	safe := []string{"https://a.b", "http://x", "mailto:a@b.c", "tel:+123", "/page", "./rel", "../up", "#frag"}
	unsafe := []string{"javascript:alert(1)", "data:text/html;base64,xx", "vbscript:x", "ftp://host"}
	for _, u := range safe {
		if !inline.SafeURL(u) {
			t.Errorf("SafeURL(%q) = false, want true", u)
		}
	}
	for _, u := range unsafe {
		if inline.SafeURL(u) {
			t.Errorf("SafeURL(%q) = true, want false", u)
		}
	}
}

func TestRenderLineClassification(t *testing.T) {
	tests := []struct {
		in   string
		kind inline.LineKind
	}{
		{"## Heading", inline.LineHeading},
		{"> quoted", inline.LineBlockquote},
		{"- item", inline.LineListItem},
		{"2. item", inline.LineListItem},
		{"---", inline.LineDivider},
		{"plain", inline.LinePlain},
		{"", inline.LinePlain},
	}
	for _, tt := range tests {
		if got := inline.RenderLine(tt.in); got.Kind != tt.kind {
			t.Errorf("RenderLine(%q).Kind = %v, want %v", tt.in, got.Kind, tt.kind)
		}
	}

	h := inline.RenderLine("### Title")
	if h.Level != 3 {
		t.Errorf("heading level = %d, want 3", h.Level)
	}
	o := inline.RenderLine("12. twelfth")
	if !o.Ordered || o.Number != 12 {
		t.Errorf("ordered item: %+v", o)
	}
	u := inline.RenderLine("* starred")
	if u.Ordered || u.Marker != "*" {
		t.Errorf("unordered item: %+v", u)
	}
}

func TestRenderLineTaskCheckbox(t *testing.T) {
	unchecked := inline.RenderLine("- [ ] todo")
	if !unchecked.Task || unchecked.Checked {
		t.Errorf("unchecked task: %+v", unchecked)
	}
	checked := inline.RenderLine("1. [x] done")
	if !checked.Task || !checked.Checked {
		t.Errorf("checked task: %+v", checked)
	}
	if diff := cmp.Diff([]inline.Span{text("done")}, checked.Spans); diff != "" {
		t.Errorf("task content (-want +got):\n%s", diff)
	}
}
