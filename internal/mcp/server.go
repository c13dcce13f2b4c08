package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"coursetutor/internal/session"
	"coursetutor/internal/source"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server  *mcp.Server
	session *session.Session
	catalog *source.Catalog
}

// Config holds server dependencies.
type Config struct {
	Session *session.Session
	Catalog *source.Catalog
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "course-tutor-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_unit",
		Description: "Ask a question about a course unit. The answer is grounded in the unit's document; questions the material does not cover are declined.",
	}, makeAskHandler(cfg.Session))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_units",
		Description: "List all configured course units with their keys and display names.",
	}, makeListUnitsHandler(cfg.Catalog))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reset_session",
		Description: "Clear the tutoring session's conversation memory.",
	}, makeResetHandler(cfg.Session))

	return &Server{
		server:  server,
		session: cfg.Session,
		catalog: cfg.Catalog,
	}
}

// Run starts the server with stdio transport (blocks until client
// disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// wrappers.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
