// ABOUTME: Render pass that re-applies stored and pending highlights.
// ABOUTME: Resolves each note independently and reports orphaned anchors.

package selection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harper/marginalia/internal/anchor"
	"github.com/harper/marginalia/internal/highlight"
	"github.com/harper/marginalia/internal/models"
)

// Placement is a note whose anchor resolved in the current content.
type Placement struct {
	Note *models.Note
	Span anchor.Span
}

// Rendered is the result of one render pass over a content unit.
type Rendered struct {
	Content   *models.Content
	Text      string
	HTML      string
	Fragments []string
	Marks     []highlight.Mark
	Placed    []Placement
	Orphaned  []*models.Note
}

// Place resolves each note against flat. Notes whose anchor no longer matches
// are returned as orphans; they do not affect the others.
func Place(flat string, notes []*models.Note, styles highlight.Styles) ([]highlight.Mark, []Placement, []*models.Note) {
	var (
		marks    []highlight.Mark
		placed   []Placement
		orphaned []*models.Note
	)
	for _, n := range notes {
		span, err := anchor.Resolve(flat, anchor.Anchor{
			Text:   n.HighlightedText,
			Before: n.ContextBefore,
			After:  n.ContextAfter,
		})
		if err != nil {
			orphaned = append(orphaned, n)
			continue
		}
		placed = append(placed, Placement{Note: n, Span: span})
		marks = append(marks, highlight.Mark{
			Span:     span,
			Class:    styles.For(n.Resolved),
			NoteID:   n.ID.String(),
			Resolved: n.Resolved,
		})
	}
	return marks, placed, orphaned
}

// Render applies every stored note of the content, plus the pending selection
// when it belongs to the same content.
func (c *Controller) Render(ctx context.Context, contentID string) (*Rendered, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	content, doc, err := c.load(ctx, contentID)
	if err != nil {
		return nil, err
	}
	flat := doc.Text()

	var marks []highlight.Mark
	if m, ok := c.pendingMark(ctx, content.Slug, flat); ok {
		marks = append(marks, m)
	}

	noteMarks, placed, orphaned := Place(flat, c.store.ListFor(content.Slug), c.styles)
	marks = append(marks, noteMarks...)
	for _, n := range orphaned {
		c.logger.DebugContext(ctx, "anchor not found, skipping highlight",
			slog.String("note", n.ID.String()),
			slog.String("content", content.Slug))
	}

	out := doc.Apply(marks)
	rendered, err := out.HTML()
	if err != nil {
		return nil, fmt.Errorf("render content %q: %w", content.Slug, err)
	}
	frags, err := out.Fragments()
	if err != nil {
		return nil, fmt.Errorf("render content %q: %w", content.Slug, err)
	}

	return &Rendered{
		Content:   content,
		Text:      flat,
		HTML:      rendered,
		Fragments: frags,
		Marks:     marks,
		Placed:    placed,
		Orphaned:  orphaned,
	}, nil
}

// pendingMark re-anchors the live selection in flat, which may have changed
// since it was captured. A selection whose anchor is gone is dropped unless a
// note is being composed on it.
func (c *Controller) pendingMark(ctx context.Context, slug, flat string) (highlight.Mark, bool) {
	p := c.pending
	if p == nil || p.contentID != slug {
		return highlight.Mark{}, false
	}

	span, err := anchor.Resolve(flat, p.anchor)
	if err != nil {
		c.logger.DebugContext(ctx, "pending selection no longer matches",
			slog.String("content", slug),
			slog.String("state", c.state.String()))
		if c.state != AddingNote {
			c.reset()
		}
		return highlight.Mark{}, false
	}

	p.span = span
	return highlight.Mark{Span: span, Class: c.styles.Pending, Pending: true}, true
}
