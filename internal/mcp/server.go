// Package mcpserver exposes the editor over MCP so AI agents can read
// and edit portfolio pages through the same session machinery the
// interactive surfaces use.
package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"blockpad/internal/app"
	"blockpad/internal/editor"
)

// Server is the MCP server for the block editor.
type Server struct {
	mcp *server.MCPServer
	app *app.App

	// Active page context (set by the open_page tool)
	activePage string
}

// New creates and configures the MCP server with all tools.
func New(a *app.App) *Server {
	s := &Server{app: a}
	s.mcp = server.NewMCPServer(
		"blockpad-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerPageTools()
	s.registerBlockTools()
	s.registerHistoryTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// resolvePage returns the page from tool args or falls back to the
// active page.
func (s *Server) resolvePage(args map[string]any) (string, error) {
	if page, ok := args["page"].(string); ok && page != "" {
		return page, nil
	}
	if s.activePage != "" {
		return s.activePage, nil
	}
	return "", fmt.Errorf("no page specified and no active page; call open_page first")
}

// sessionFor returns the open session for a page, opening one when
// needed.
func (s *Server) sessionFor(args map[string]any) (*editor.Session, string, error) {
	page, err := s.resolvePage(args)
	if err != nil {
		return nil, "", err
	}
	sess, err := s.app.Open(page)
	if err != nil {
		return nil, "", err
	}
	return sess, page, nil
}

func getInt(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }
