// Package markdown is the codec between the persisted markdown dialect
// and the in-memory block document. Parse and Serialize are pure; the
// grammar matches the server-side renderer of the portfolio site
// (block separator comments, row/col markers, alignment comments).
package markdown

import (
	"regexp"
	"strings"

	"blockpad/internal/domain"
)

var (
	blockSepRe = regexp.MustCompile(`\n+\s*<!--\s*block\s*-->\s*\n+`)

	rowOpenRe  = regexp.MustCompile(`^\s*<!--\s*row\s*-->\s*`)
	rowCloseRe = regexp.MustCompile(`\s*<!--\s*/row\s*-->\s*$`)
	colSepRe   = regexp.MustCompile(`\n*\s*<!--\s*col\s*-->\s*\n*`)

	htmlOpenRe  = regexp.MustCompile(`^<!--\s*html\s*-->`)
	htmlCloseRe = regexp.MustCompile(`<!--\s*/html\s*-->$`)
	htmlAlignRe = regexp.MustCompile(`^<div style="text-align:\s*(center|right)\s*">([\s\S]*)</div>$`)

	srcAttrRe   = regexp.MustCompile(`src="([^"]*)"`)
	altAttrRe   = regexp.MustCompile(`alt="([^"]*)"`)
	styleAttrRe = regexp.MustCompile(`style="([^"]*)"`)

	// src may be empty: a freshly inserted image block serializes
	// before its upload finishes.
	mdImageRe = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]*)\)$`)

	calloutRe = regexp.MustCompile(`^<div class="callout"(?:\s+style="([^"]*)")?\s*>([\s\S]*)</div>$`)

	dividerRe = regexp.MustCompile(`^(\*{3,}|-{3,}|_{3,})$`)

	alignTextRe = regexp.MustCompile(`^<!--\s*align:(center|right)\s*-->\n?([\s\S]*?)\n?<!--\s*/align\s*-->$`)

	legacyDivRe = regexp.MustCompile(`^<div style="text-align:\s*(center|right|left)\s*;?\s*">([\s\S]*)</div>$`)
)

// Parse turns dialect text into a document. The result always has at
// least one block: empty or whitespace-only input yields a single empty
// text block so every render path can assume a non-empty document.
func Parse(text string) domain.Document {
	if strings.TrimSpace(text) == "" {
		return domain.Document{domain.New(domain.BlockTypeText)}
	}

	var doc domain.Document
	for _, chunk := range blockSepRe.Split(text, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		doc = append(doc, parseChunk(chunk))
	}
	if len(doc) == 0 {
		return domain.Document{domain.New(domain.BlockTypeText)}
	}
	return doc
}

// parseChunk handles row detection, then falls back to single-block
// classification. Row markers with anything other than exactly two
// columns are not treated specially: the chunk goes through normal
// classification and keeps the literal markers. Deliberate fallback,
// not an error.
func parseChunk(chunk string) domain.Block {
	if rowOpenRe.MatchString(chunk) && rowCloseRe.MatchString(chunk) {
		inner := rowOpenRe.ReplaceAllString(chunk, "")
		inner = rowCloseRe.ReplaceAllString(inner, "")
		cols := colSepRe.Split(inner, 2)
		if len(cols) == 2 {
			return &domain.RowBlock{
				ID:    domain.NewID(),
				Left:  classify(strings.TrimSpace(cols[0])),
				Right: classify(strings.TrimSpace(cols[1])),
			}
		}
	}
	return classify(chunk)
}

// classify runs the single-block detection cascade. Order matters: the
// more specific forms must win before the generic text fallback.
func classify(chunk string) domain.Block {
	if htmlOpenRe.MatchString(chunk) && htmlCloseRe.MatchString(chunk) {
		return parseHTMLBlock(chunk)
	}
	if strings.HasPrefix(chunk, "```") {
		return parseCodeBlock(chunk)
	}
	if strings.HasPrefix(chunk, "<img") {
		return parseImageTag(chunk)
	}
	if m := mdImageRe.FindStringSubmatch(chunk); m != nil {
		return &domain.ImageBlock{ID: domain.NewID(), Alt: m[1], Src: m[2], Align: domain.AlignLeft}
	}
	if strings.HasPrefix(chunk, "<video") {
		return parseVideoTag(chunk)
	}
	if strings.HasPrefix(chunk, `<div class="callout"`) {
		if m := calloutRe.FindStringSubmatch(chunk); m != nil {
			return &domain.CalloutBlock{
				ID:      domain.NewID(),
				Content: strings.TrimSpace(m[2]),
				Align:   alignFromTextAlign(m[1]),
			}
		}
	}
	if dividerRe.MatchString(chunk) {
		return &domain.DividerBlock{ID: domain.NewID()}
	}
	if m := alignTextRe.FindStringSubmatch(chunk); m != nil {
		return &domain.TextBlock{
			ID:      domain.NewID(),
			Content: strings.TrimSpace(m[2]),
			Align:   domain.Alignment(m[1]),
		}
	}
	// Legacy form: older documents wrapped aligned text in a styled div
	// instead of alignment comments. Parsed, never written back.
	if strings.HasPrefix(chunk, `<div style="text-align`) {
		if m := legacyDivRe.FindStringSubmatch(chunk); m != nil {
			return &domain.TextBlock{
				ID:      domain.NewID(),
				Content: strings.TrimSpace(m[2]),
				Align:   domain.Alignment(m[1]),
			}
		}
	}
	return &domain.TextBlock{ID: domain.NewID(), Content: chunk, Align: domain.AlignLeft}
}

func parseHTMLBlock(chunk string) domain.Block {
	inner := htmlOpenRe.ReplaceAllString(chunk, "")
	inner = htmlCloseRe.ReplaceAllString(inner, "")
	inner = strings.TrimSpace(inner)
	align := domain.AlignLeft
	if m := htmlAlignRe.FindStringSubmatch(inner); m != nil {
		align = domain.Alignment(m[1])
		inner = strings.TrimSpace(m[2])
	}
	return &domain.HTMLBlock{ID: domain.NewID(), HTML: inner, Align: align}
}

func parseCodeBlock(chunk string) domain.Block {
	lines := strings.Split(chunk, "\n")
	lang := "text"
	if info := strings.Fields(strings.TrimPrefix(lines[0], "```")); len(info) > 0 {
		lang = info[0]
	}
	end := len(lines)
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	body := ""
	if end > 1 {
		body = strings.Join(lines[1:end], "\n")
	}
	return &domain.CodeBlock{ID: domain.NewID(), Language: lang, Code: body}
}

func parseImageTag(chunk string) domain.Block {
	b := &domain.ImageBlock{ID: domain.NewID(), Align: domain.AlignLeft}
	if m := srcAttrRe.FindStringSubmatch(chunk); m != nil {
		b.Src = m[1]
	}
	if m := altAttrRe.FindStringSubmatch(chunk); m != nil {
		b.Alt = m[1]
	}
	if m := styleAttrRe.FindStringSubmatch(chunk); m != nil {
		b.Style, b.Align = splitAlignFromStyle(m[1])
	}
	return b
}

func parseVideoTag(chunk string) domain.Block {
	b := &domain.VideoBlock{ID: domain.NewID(), Align: domain.AlignLeft}
	if m := srcAttrRe.FindStringSubmatch(chunk); m != nil {
		b.Src = m[1]
	}
	if m := styleAttrRe.FindStringSubmatch(chunk); m != nil {
		b.Style, b.Align = splitAlignFromStyle(m[1])
	}
	return b
}
