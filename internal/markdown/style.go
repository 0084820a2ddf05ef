package markdown

import (
	"regexp"
	"strings"

	"blockpad/internal/domain"
)

var textAlignRe = regexp.MustCompile(`text-align:\s*(center|right)`)

// splitAlignFromStyle extracts block-level alignment from an inline style
// string, returning the remaining declarations (sizing etc.) and the
// alignment. Parsing is lenient: margin-left plus margin-right auto means
// center, margin-left auto alone means right, anything else is left. The
// right-alignment encoding carries margin-left only; that asymmetry is
// shared with every document already on disk, so it stays.
func splitAlignFromStyle(style string) (string, domain.Alignment) {
	hasLeft, hasRight := false, false
	var rest []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		key, val, _ := strings.Cut(decl, ":")
		key = strings.TrimSpace(strings.ToLower(key))
		val = strings.TrimSpace(strings.ToLower(val))
		switch {
		case key == "margin-left" && val == "auto":
			hasLeft = true
		case key == "margin-right" && val == "auto":
			hasRight = true
		default:
			rest = append(rest, decl)
		}
	}
	align := domain.AlignLeft
	if hasLeft && hasRight {
		align = domain.AlignCenter
	} else if hasLeft {
		align = domain.AlignRight
	}
	return strings.Join(rest, "; "), align
}

// alignFromTextAlign reads alignment from a text-align declaration, used
// by callout and legacy text-div forms.
func alignFromTextAlign(style string) domain.Alignment {
	m := textAlignRe.FindStringSubmatch(style)
	if m == nil {
		return domain.AlignLeft
	}
	return domain.Alignment(m[1])
}

// marginDecls is the wire encoding of alignment for block-level media.
// Center gets both margins; right gets margin-left only.
func marginDecls(align domain.Alignment) string {
	switch align {
	case domain.AlignCenter:
		return "margin-left: auto; margin-right: auto"
	case domain.AlignRight:
		return "margin-left: auto"
	default:
		return ""
	}
}

// hasSizing reports whether a style string carries a width or max-width
// declaration, which forces the HTML tag form for media blocks.
func hasSizing(style string) bool {
	return strings.Contains(style, "width")
}

// joinStyle combines style fragments, skipping empties.
func joinStyle(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "; ")
}
