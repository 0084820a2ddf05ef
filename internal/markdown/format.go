package markdown

import (
	"fmt"
	"strings"

	"blockpad/internal/domain"
)

const blockSeparator = "\n\n<!-- block -->\n\n"

// Serialize renders a document back to dialect text. Serialization is
// normalizing: an unsized, left-aligned image that arrived as an HTML
// tag goes out in markdown form. Parse(Serialize(doc)) is structurally
// equal to doc; byte-level identity with the original input is not
// guaranteed.
func Serialize(doc domain.Document) string {
	parts := make([]string, len(doc))
	for i, b := range doc {
		parts[i] = formatBlock(b)
	}
	return strings.Join(parts, blockSeparator)
}

func formatBlock(b domain.Block) string {
	switch blk := b.(type) {
	case *domain.TextBlock:
		if blk.Align != domain.AlignLeft {
			return fmt.Sprintf("<!-- align:%s -->\n%s\n<!-- /align -->", blk.Align, blk.Content)
		}
		return blk.Content

	case *domain.ImageBlock:
		if hasSizing(blk.Style) || blk.Align != domain.AlignLeft {
			style := joinStyle(blk.Style, marginDecls(blk.Align))
			return fmt.Sprintf(`<img src="%s" alt="%s" style="%s">`, blk.Src, blk.Alt, style)
		}
		return fmt.Sprintf("![%s](%s)", blk.Alt, blk.Src)

	case *domain.VideoBlock:
		if hasSizing(blk.Style) || blk.Align != domain.AlignLeft {
			style := joinStyle(blk.Style, marginDecls(blk.Align))
			return fmt.Sprintf(`<video src="%s" controls style="%s"></video>`, blk.Src, style)
		}
		return fmt.Sprintf(`<video src="%s" controls></video>`, blk.Src)

	case *domain.CodeBlock:
		return fmt.Sprintf("```%s\n%s\n```", blk.Language, blk.Code)

	case *domain.HTMLBlock:
		inner := blk.HTML
		if blk.Align != domain.AlignLeft {
			inner = fmt.Sprintf(`<div style="text-align: %s">%s</div>`, blk.Align, inner)
		}
		return fmt.Sprintf("<!-- html -->\n%s\n<!-- /html -->", inner)

	case *domain.CalloutBlock:
		if blk.Align != domain.AlignLeft {
			return fmt.Sprintf(`<div class="callout" style="text-align: %s">%s</div>`, blk.Align, blk.Content)
		}
		return fmt.Sprintf(`<div class="callout">%s</div>`, blk.Content)

	case *domain.RowBlock:
		return fmt.Sprintf("<!-- row -->\n%s\n<!-- col -->\n%s\n<!-- /row -->",
			formatBlock(blk.Left), formatBlock(blk.Right))

	case *domain.DividerBlock:
		return "---"
	}
	return ""
}
