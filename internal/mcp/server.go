package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/course-rag/internal/rag"
	"github.com/bull/course-rag/internal/vectorstore"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
	system *rag.System
	store  *vectorstore.Store
}

// Config holds server dependencies.
type Config struct {
	System *rag.System
	Store  *vectorstore.Store
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "course-rag-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_course_question",
		Description: "Ask a question about the indexed course materials. Answers are grounded in course content via semantic search and cite the lessons they drew on. Pass the returned session_id to keep conversation context across questions.",
	}, makeAskHandler(cfg.System))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_course_stats",
		Description: "Get the number of indexed courses and their titles.",
	}, makeStatsHandler(cfg.System))

	return &Server{
		server: server,
		system: cfg.System,
		store:  cfg.Store,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
