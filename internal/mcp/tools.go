// ABOUTME: MCP tools for annotating content and managing notes.
// ABOUTME: Maps CLI functionality to the MCP tool interface.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/marginalia/internal/anchor"
	"github.com/harper/marginalia/internal/db"
	"github.com/harper/marginalia/internal/models"
)

func (s *Server) registerTools() {
	// add_note
	s.server.AddTool(&mcp.Tool{
		Name:        "add_note",
		Description: "Highlight a passage of a content unit and attach a note to it",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"content": {"type": "string", "description": "Content slug or id"},
				"phrase": {"type": "string", "description": "Exact passage to highlight"},
				"occurrence": {"type": "integer", "description": "Which occurrence of the phrase (1-based)", "default": 1},
				"start": {"type": "integer", "description": "Byte offset of the selection start, used when phrase is omitted"},
				"end": {"type": "integer", "description": "Byte offset of the selection end, used when phrase is omitted"},
				"text": {"type": "string", "description": "Note text (markdown)"}
			},
			"required": ["content", "text"]
		}`),
	}, s.handleAddNote)

	// list_notes
	s.server.AddTool(&mcp.Tool{
		Name:        "list_notes",
		Description: "List notes, optionally for one content unit, open only, or matching a search",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"content": {"type": "string", "description": "Content slug"},
				"open_only": {"type": "boolean", "description": "Skip resolved notes"},
				"query": {"type": "string", "description": "Full-text search query"},
				"limit": {"type": "integer", "description": "Max results", "default": 50}
			}
		}`),
	}, s.handleListNotes)

	// get_note
	s.server.AddTool(&mcp.Tool{
		Name:        "get_note",
		Description: "Get a note by ID prefix",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix (6+ chars)"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetNote)

	// resolve_note
	s.server.AddTool(&mcp.Tool{
		Name:        "resolve_note",
		Description: "Mark a note resolved, or reopen it",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"},
				"reopen": {"type": "boolean", "description": "Reopen instead of resolving"}
			},
			"required": ["id"]
		}`),
	}, s.handleResolveNote)

	// delete_note
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Note ID or prefix"}
			},
			"required": ["id"]
		}`),
	}, s.handleDeleteNote)

	// render_content
	s.server.AddTool(&mcp.Tool{
		Name:        "render_content",
		Description: "Render a content unit with its highlights applied",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"content": {"type": "string", "description": "Content slug or id"},
				"format": {"type": "string", "enum": ["html", "text"], "default": "html"}
			},
			"required": ["content"]
		}`),
	}, s.handleRenderContent)

	// list_contents
	s.server.AddTool(&mcp.Tool{
		Name:        "list_contents",
		Description: "List content units available for annotation",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "Filter by category (finance, ai-ml, mathematics)"},
				"subject": {"type": "string", "description": "Filter by subject slug"}
			}
		}`),
	}, s.handleListContents)

	// list_subjects
	s.server.AddTool(&mcp.Tool{
		Name:        "list_subjects",
		Description: "List subjects in display order with their lesson counts",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"category": {"type": "string", "description": "Filter by category (finance, ai-ml, mathematics)"}
			}
		}`),
	}, s.handleListSubjects)
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return textResult(string(data))
}

func (s *Server) handleAddNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Content    string `json:"content"`
		Phrase     string `json:"phrase"`
		Occurrence int    `json:"occurrence"`
		Start      *int   `json:"start"`
		End        *int   `json:"end"`
		Text       string `json:"text"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	if strings.TrimSpace(params.Text) == "" {
		return errorResult("note text cannot be empty"), nil
	}

	var span anchor.Span
	switch {
	case params.Phrase != "":
		var err error
		span, err = s.app.FindPhrase(ctx, params.Content, params.Phrase, params.Occurrence)
		if err != nil {
			return errorResult("failed to select passage: %v", err), nil
		}
	case params.Start != nil && params.End != nil:
		span = anchor.Span{Start: *params.Start, End: *params.End}
	default:
		return errorResult("either phrase or start and end are required"), nil
	}

	note, err := s.app.Annotate(ctx, params.Content, span, params.Text)
	if err != nil {
		return errorResult("failed to add note: %v", err), nil
	}
	return jsonResult(note), nil
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Content  string `json:"content"`
		OpenOnly bool   `json:"open_only"`
		Query    string `json:"query"`
		Limit    int    `json:"limit"`
	}
	params.Limit = 50 // default
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	var notes []*models.Note
	if params.Query != "" {
		found, err := s.app.SearchNotes(ctx, params.Query, params.Limit)
		if err != nil {
			return errorResult("failed to search notes: %v", err), nil
		}
		for _, n := range found {
			if params.Content != "" && n.ContentID != params.Content {
				continue
			}
			if params.OpenOnly && n.Resolved {
				continue
			}
			notes = append(notes, n)
		}
	} else {
		notes = s.app.ListNotes(params.Content, params.OpenOnly)
		if params.Limit > 0 && len(notes) > params.Limit {
			notes = notes[:params.Limit]
		}
	}

	if notes == nil {
		notes = []*models.Note{}
	}
	return jsonResult(notes), nil
}

func (s *Server) handleGetNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	note, err := s.app.OpenNote(params.ID)
	if err != nil {
		return errorResult("failed to get note: %v", err), nil
	}
	return jsonResult(note), nil
}

func (s *Server) handleResolveNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID     string `json:"id"`
		Reopen bool   `json:"reopen"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	note, err := s.app.SetResolved(ctx, params.ID, !params.Reopen)
	if err != nil {
		return errorResult("failed to update note: %v", err), nil
	}
	verb := "Resolved"
	if params.Reopen {
		verb = "Reopened"
	}
	return textResult(fmt.Sprintf("%s note %s", verb, note.ID.String())), nil
}

func (s *Server) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	note, err := s.app.Notes.FindByPrefix(params.ID)
	if err != nil {
		return errorResult("failed to find note: %v", err), nil
	}
	s.app.DeleteNote(ctx, note.ID)
	return textResult(fmt.Sprintf("Deleted note %s", note.ID.String())), nil
}

func (s *Server) handleRenderContent(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Content string `json:"content"`
		Format  string `json:"format"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	r, err := s.app.Controller.Render(ctx, params.Content)
	if err != nil {
		return errorResult("failed to render content: %v", err), nil
	}

	body := r.HTML
	if params.Format == "text" {
		body = r.Text
	}
	if len(r.Orphaned) > 0 {
		var ids []string
		for _, n := range r.Orphaned {
			ids = append(ids, n.ShortID())
		}
		body += fmt.Sprintf("\n\n<!-- %d note(s) no longer match: %s -->", len(r.Orphaned), strings.Join(ids, ", "))
	}
	return textResult(body), nil
}

type contentSummary struct {
	Slug     string          `json:"slug"`
	Title    string          `json:"title"`
	Category models.Category `json:"category"`
	Subject  string          `json:"subject,omitempty"`
	Order    int             `json:"order"`
	Open     int             `json:"open_notes"`
	Resolved int             `json:"resolved_notes"`
}

func (s *Server) handleListContents(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Category string `json:"category"`
		Subject  string `json:"subject"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	filter := db.ContentFilter{Category: models.Category(params.Category)}
	if params.Subject != "" {
		sub, err := db.GetSubject(ctx, s.app.DB, params.Subject)
		if err != nil {
			return errorResult("subject not found: %s", params.Subject), nil
		}
		filter.SubjectID = sub.ID
	}

	contents, err := db.ListContents(ctx, s.app.DB, filter)
	if err != nil {
		return errorResult("failed to list contents: %v", err), nil
	}

	subjects, err := db.ListSubjects(ctx, s.app.DB, "")
	if err != nil {
		return errorResult("failed to list subjects: %v", err), nil
	}
	subjectSlugs := make(map[uuid.UUID]string, len(subjects))
	for _, sub := range subjects {
		subjectSlugs[sub.ID] = sub.Slug
	}

	out := make([]contentSummary, 0, len(contents))
	for _, c := range contents {
		sum := contentSummary{Slug: c.Slug, Title: c.Title, Category: c.Category, Subject: subjectSlugs[c.SubjectID], Order: c.Order}
		for _, n := range s.app.ListNotes(c.Slug, false) {
			if n.Resolved {
				sum.Resolved++
			} else {
				sum.Open++
			}
		}
		out = append(out, sum)
	}
	return jsonResult(out), nil
}

type subjectSummary struct {
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    models.Category `json:"category"`
	Order       int             `json:"order"`
	Lessons     []string        `json:"lessons"`
}

func (s *Server) handleListSubjects(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	subjects, err := db.ListSubjects(ctx, s.app.DB, models.Category(params.Category))
	if err != nil {
		return errorResult("failed to list subjects: %v", err), nil
	}

	out := make([]subjectSummary, 0, len(subjects))
	for _, sub := range subjects {
		lessons, err := db.ListContents(ctx, s.app.DB, db.ContentFilter{SubjectID: sub.ID})
		if err != nil {
			return errorResult("failed to list lessons of %s: %v", sub.Slug, err), nil
		}
		sum := subjectSummary{
			Slug:        sub.Slug,
			Title:       sub.Title,
			Description: sub.Description,
			Category:    sub.Category,
			Order:       sub.Order,
			Lessons:     make([]string, 0, len(lessons)),
		}
		for _, c := range lessons {
			sum.Lessons = append(sum.Lessons, c.Slug)
		}
		out = append(out, sum)
	}
	return jsonResult(out), nil
}
