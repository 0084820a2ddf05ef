package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"blockpad/internal/domain"
)

func (s *Server) registerBlockTools() {
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List a page's blocks with index, id, type and a content excerpt."),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleListBlocks)

	s.mcp.AddTool(mcp.NewTool("add_block",
		mcp.WithDescription("Insert a new block. Appends when index is omitted."),
		mcp.WithString("type",
			mcp.Description("Block type: text, image, video, code, html, callout, row, divider"),
			mcp.Required(),
		),
		mcp.WithNumber("index", mcp.Description("Insertion index (optional, appends by default)")),
		mcp.WithString("content", mcp.Description("Initial text content for text/callout blocks (optional)")),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleAddBlock)

	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Update fields of the block at index. Only the provided fields change."),
		mcp.WithNumber("index", mcp.Description("Block index"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Text content (text/callout blocks)")),
		mcp.WithString("src", mcp.Description("Media source URL (image/video blocks)")),
		mcp.WithString("alt", mcp.Description("Alt text (image blocks)")),
		mcp.WithString("language", mcp.Description("Language (code blocks)")),
		mcp.WithString("code", mcp.Description("Code body (code blocks)")),
		mcp.WithString("html", mcp.Description("Raw HTML (html blocks)")),
		mcp.WithString("align", mcp.Description("Alignment: left, center, right")),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleUpdateBlock)

	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete the block at index. The last block is reset to empty text instead of removed."),
		mcp.WithNumber("index", mcp.Description("Block index"), mcp.Required()),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move the block at 'from' to insertion index 'to' (counted before removal)."),
		mcp.WithNumber("from", mcp.Description("Current block index"), mcp.Required()),
		mcp.WithNumber("to", mcp.Description("Target insertion index"), mcp.Required()),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleMoveBlock)
}

type blockSummary struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Type    string `json:"type"`
	Excerpt string `json:"excerpt,omitempty"`
}

func summarize(i int, b domain.Block) blockSummary {
	sum := blockSummary{Index: i, ID: b.BlockID(), Type: string(b.Type())}
	switch v := b.(type) {
	case *domain.TextBlock:
		sum.Excerpt = excerpt(v.Content)
	case *domain.CalloutBlock:
		sum.Excerpt = excerpt(v.Content)
	case *domain.CodeBlock:
		sum.Excerpt = excerpt(v.Language + ": " + v.Code)
	case *domain.ImageBlock:
		sum.Excerpt = v.Src
	case *domain.VideoBlock:
		sum.Excerpt = v.Src
	case *domain.HTMLBlock:
		sum.Excerpt = excerpt(v.HTML)
	}
	return sum
}

func excerpt(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, _, err := s.sessionFor(req.GetArguments())
	if err != nil {
		return nil, err
	}
	doc := sess.Document()
	out := make([]blockSummary, len(doc))
	for i, b := range doc {
		out[i] = summarize(i, b)
	}
	return jsonResult(out)
}

func parseBlockType(s string) (domain.BlockType, error) {
	t := domain.BlockType(s)
	switch t {
	case domain.BlockTypeText, domain.BlockTypeImage, domain.BlockTypeVideo,
		domain.BlockTypeCode, domain.BlockTypeHTML, domain.BlockTypeCallout,
		domain.BlockTypeRow, domain.BlockTypeDivider:
		return t, nil
	}
	return "", fmt.Errorf("unknown block type %q", s)
}

func (s *Server) handleAddBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	typeName, _ := args["type"].(string)
	t, err := parseBlockType(typeName)
	if err != nil {
		return nil, err
	}
	sess, _, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	index := getInt(args, "index", sess.Len())
	b := sess.InsertBlock(index, t)
	if content, ok := args["content"].(string); ok && content != "" {
		idx := clampIndex(index, sess.Len()-1)
		sess.SetTextContent(idx, content)
	}
	return jsonResult(summarize(clampIndex(index, sess.Len()-1), b))
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, _, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	index := getInt(args, "index", -1)
	if index < 0 || index >= sess.Len() {
		return nil, fmt.Errorf("index %d out of range", index)
	}

	var p domain.Patch
	if v, ok := args["content"].(string); ok {
		p.Content = domain.StringPtr(v)
	}
	if v, ok := args["src"].(string); ok {
		p.Src = domain.StringPtr(v)
	}
	if v, ok := args["alt"].(string); ok {
		p.Alt = domain.StringPtr(v)
	}
	if v, ok := args["language"].(string); ok {
		p.Language = domain.StringPtr(v)
	}
	if v, ok := args["code"].(string); ok {
		p.Code = domain.StringPtr(v)
	}
	if v, ok := args["html"].(string); ok {
		p.HTML = domain.StringPtr(v)
	}
	if v, ok := args["align"].(string); ok {
		switch a := domain.Alignment(v); a {
		case domain.AlignLeft, domain.AlignCenter, domain.AlignRight:
			p.Align = domain.AlignPtr(a)
		default:
			return nil, fmt.Errorf("unknown alignment %q", v)
		}
	}
	if !sess.UpdateBlock(index, p) {
		return nil, fmt.Errorf("update block %d failed", index)
	}
	b, _ := sess.Block(index)
	return jsonResult(summarize(index, b))
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, page, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	index := getInt(args, "index", -1)
	if !sess.DeleteBlock(index) {
		return nil, fmt.Errorf("index %d out of range", index)
	}
	return textResult(fmt.Sprintf("Deleted block %d from %s", index, page)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sess, page, err := s.sessionFor(args)
	if err != nil {
		return nil, err
	}
	from := getInt(args, "from", -1)
	to := getInt(args, "to", -1)
	if !sess.MoveBlock(from, to) {
		return nil, fmt.Errorf("move %d -> %d failed", from, to)
	}
	return textResult(fmt.Sprintf("Moved block %d to %d on %s", from, to, page)), nil
}
