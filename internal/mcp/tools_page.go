package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"blockpad/internal/content"
)

func (s *Server) registerPageTools() {
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the editable pages: every project slug plus 'about'."),
	), s.handleListPages)

	s.mcp.AddTool(mcp.NewTool("open_page",
		mcp.WithDescription("Open an editing session for a page and make it the active page for subsequent tools."),
		mcp.WithString("page", mcp.Description("Project slug or 'about'"), mcp.Required()),
	), s.handleOpenPage)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a page's markdown. Reads the live session content when one is open."),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleReadPage)

	s.mcp.AddTool(mcp.NewTool("save_page",
		mcp.WithDescription("Save the page immediately and close its editing session."),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
	), s.handleSavePage)

	s.mcp.AddTool(mcp.NewTool("discard_page",
		mcp.WithDescription("🛑 DESTRUCTIVE: Close the page's editing session without saving, losing unsaved edits."),
		mcp.WithString("page", mcp.Description("Project slug or 'about' (optional, defaults to active page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDiscardPage)

	s.mcp.AddTool(mcp.NewTool("recover_draft",
		mcp.WithDescription("Fetch the newest journaled draft for a page, for recovery after a crash."),
		mcp.WithString("page", mcp.Description("Project slug or 'about'"), mcp.Required()),
	), s.handleRecoverDraft)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slugs, err := s.app.Store().ListProjects()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return jsonResult(map[string]any{
		"projects": slugs,
		"about":    content.AboutSlug,
		"open":     s.app.Sessions(),
	})
}

func (s *Server) handleOpenPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, _ := req.GetArguments()["page"].(string)
	if page == "" {
		return nil, fmt.Errorf("page is required")
	}
	sess, err := s.app.Open(page)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	s.activePage = page
	return textResult(fmt.Sprintf("Opened %s with %d blocks", page, sess.Len())), nil
}

func (s *Server) handleReadPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if sess, ok := s.app.Session(page); ok {
		return textResult(sess.Markdown()), nil
	}
	p, err := s.app.Store().Page(page)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return textResult(p.Body), nil
}

func (s *Server) handleSavePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	sess, ok := s.app.Session(page)
	if !ok {
		return nil, fmt.Errorf("no open session for %s", page)
	}
	if err := sess.ManualSave(ctx); err != nil {
		return nil, err
	}
	if s.activePage == page {
		s.activePage = ""
	}
	return textResult(fmt.Sprintf("Saved %s", page)), nil
}

func (s *Server) handleDiscardPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.resolvePage(req.GetArguments())
	if err != nil {
		return nil, err
	}
	sess, ok := s.app.Session(page)
	if !ok {
		return nil, fmt.Errorf("no open session for %s", page)
	}
	sess.Cancel(true)
	if s.activePage == page {
		s.activePage = ""
	}
	return textResult(fmt.Sprintf("Discarded session for %s", page)), nil
}

func (s *Server) handleRecoverDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, _ := req.GetArguments()["page"].(string)
	if page == "" {
		return nil, fmt.Errorf("page is required")
	}
	draft, ok, err := s.app.LatestDraft(page)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult(fmt.Sprintf("No journaled drafts for %s", page)), nil
	}
	return jsonResult(map[string]any{
		"page":      draft.Page,
		"createdAt": draft.CreatedAt,
		"content":   draft.Content,
	})
}
