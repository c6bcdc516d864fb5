// ABOUTME: MCP prompts for common annotation review workflows.
// ABOUTME: Embeds the current notes so the agent starts with context.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/marginalia/internal/models"
)

func (s *Server) registerPrompts() {
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "review-open-notes",
		Description: "Walk through the open notes on a content unit and decide what to resolve",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "content",
				Description: "Slug of the content unit",
				Required:    true,
			},
		},
	}, s.getReviewOpenNotesPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "summarize-annotations",
		Description: "Summarize what readers highlighted and said, per content unit",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "content",
				Description: "Slug of the content unit (all content when omitted)",
				Required:    false,
			},
		},
	}, s.getSummarizeAnnotationsPrompt)
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

// writeNotes lists notes as markdown bullets with their passage in context.
func writeNotes(sb *strings.Builder, notes []*models.Note) {
	for _, n := range notes {
		state := "open"
		if n.Resolved {
			state = "resolved"
		}
		fmt.Fprintf(sb, "- [%s] (%s) …%s**%s**%s…\n", n.ShortID(), state, n.ContextBefore, n.HighlightedText, n.ContextAfter)
		if text := strings.TrimSpace(n.Text); text != "" {
			fmt.Fprintf(sb, "  > %s\n", strings.ReplaceAll(text, "\n", "\n  > "))
		}
	}
}

func (s *Server) getReviewOpenNotesPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	slug, ok := req.Params.Arguments["content"]
	if !ok || slug == "" {
		return nil, fmt.Errorf("content argument is required")
	}

	open := s.app.ListNotes(slug, true)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Please review the open notes on %q.\n\n", slug)
	if len(open) == 0 {
		sb.WriteString("There are no open notes. Use the render_content tool to read the content and suggest passages worth annotating.\n")
		return userPrompt(sb.String()), nil
	}

	writeNotes(&sb, open)
	sb.WriteString(`
For each note:
1. Use the render_content tool to read the highlighted passage in place
2. Decide whether the note has been addressed
3. Use the resolve_note tool for notes that are done
4. Summarize what is still open and why`)

	return userPrompt(sb.String()), nil
}

func (s *Server) getSummarizeAnnotationsPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	slug := req.Params.Arguments["content"]

	notes := s.app.ListNotes(slug, false)
	byContent := map[string][]*models.Note{}
	var order []string
	for _, n := range notes {
		if _, seen := byContent[n.ContentID]; !seen {
			order = append(order, n.ContentID)
		}
		byContent[n.ContentID] = append(byContent[n.ContentID], n)
	}

	var sb strings.Builder
	sb.WriteString("Summarize the annotations below. For each content unit, group the notes by theme, call out recurring confusion, and list passages that attracted several notes.\n")
	if len(order) == 0 {
		sb.WriteString("\nNo notes have been written yet.\n")
	}
	for _, id := range order {
		fmt.Fprintf(&sb, "\n## %s\n\n", id)
		writeNotes(&sb, byContent[id])
	}

	return userPrompt(sb.String()), nil
}
