// ABOUTME: MCP resources exposing rendered content units.
// ABOUTME: Serves highlighted HTML via the marginalia://content/{slug} scheme.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const contentURIPrefix = "marginalia://content/"

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: contentURIPrefix + "{slug}",
			Name:        "Content",
			Description: "A content unit rendered with its note highlights",
			MIMEType:    "text/html",
		},
		s.handleReadResource,
	)
}

func (s *Server) handleReadResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	slug, ok := strings.CutPrefix(req.Params.URI, contentURIPrefix)
	if !ok || slug == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	r, err := s.app.Controller.Render(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to render content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/html",
				Text:     r.HTML,
			},
		},
	}, nil
}
