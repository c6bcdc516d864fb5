// ABOUTME: MCP server for marginalia integration with AI agents.
// ABOUTME: Provides tools, resources, and prompts for highlight-anchored notes.

package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/marginalia/internal/app"
)

type Server struct {
	server *mcp.Server
	app    *app.App
}

func NewServer(a *app.App, version string) *Server {
	s := &Server{app: a}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "marginalia",
			Version: version,
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) Serve(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
