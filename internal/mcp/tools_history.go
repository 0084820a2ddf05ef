package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last edit on a page's session."),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the next edit on a page's session."),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleRedo)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	sess, ok := s.app.Session(page)
	if !ok {
		return nil, fmt.Errorf("no open session for %s", page)
	}
	if !sess.Undo() {
		return textResult("Nothing to undo"), nil
	}
	return textResult(fmt.Sprintf("Undid last edit on %s", page)), nil
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	sess, ok := s.app.Session(page)
	if !ok {
		return nil, fmt.Errorf("no open session for %s", page)
	}
	if !sess.Redo() {
		return textResult("Nothing to redo"), nil
	}
	return textResult(fmt.Sprintf("Reapplied edit on %s", page)), nil
}
