// ABOUTME: Selection controller driving note creation from text selections.
// ABOUTME: Owns the Idle/Selecting/TooltipShown/AddingNote state machine.

package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/anchor"
	"github.com/harper/marginalia/internal/highlight"
	"github.com/harper/marginalia/internal/logx"
	"github.com/harper/marginalia/internal/models"
)

var (
	ErrInvalidTransition = errors.New("invalid selection state transition")
	ErrEmptyNoteText     = errors.New("note text cannot be empty")
	ErrEmptySelection    = errors.New("selection is empty after trimming whitespace")
)

type State int

const (
	Idle State = iota
	Selecting
	TooltipShown
	AddingNote
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case TooltipShown:
		return "tooltip"
	case AddingNote:
		return "adding"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Provider supplies content units by id or slug.
type Provider interface {
	GetContent(ctx context.Context, id string) (*models.Content, error)
}

// NoteStore is the subset of the note store the controller drives.
type NoteStore interface {
	Add(ctx context.Context, d models.NoteDraft) (*models.Note, error)
	ListFor(contentID string) []*models.Note
}

// Host is told when a persisted highlight is activated. It owns how the note
// is shown.
type Host interface {
	NotifyOpenNote(id uuid.UUID)
}

// HostFunc adapts a function to Host.
type HostFunc func(id uuid.UUID)

func (f HostFunc) NotifyOpenNote(id uuid.UUID) { f(id) }

// Tooltip is the "Add Note" affordance shown next to a selection.
type Tooltip struct {
	ContentID string
	Span      anchor.Span
	Text      string
}

type pending struct {
	contentID string
	span      anchor.Span
	anchor    anchor.Anchor
}

type Controller struct {
	mu      sync.Mutex
	state   State
	pending *pending
	focused uuid.UUID

	store    NoteStore
	provider Provider
	host     Host
	window   int
	styles   highlight.Styles
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

func WithContextWindow(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.window = n
		}
	}
}

func WithStyles(s highlight.Styles) Option {
	return func(c *Controller) {
		c.styles = s
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

func New(store NoteStore, provider Provider, host Host, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		provider: provider,
		host:     host,
		window:   anchor.DefaultContextWindow,
		styles:   highlight.DefaultStyles(),
		logger:   logx.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.host == nil {
		c.host = HostFunc(func(uuid.UUID) {})
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Focused returns the note most recently opened or created.
func (c *Controller) Focused() (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused, c.focused != uuid.Nil
}

// Tooltip returns the active affordance, if the tooltip is showing.
func (c *Controller) Tooltip() (Tooltip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != TooltipShown || c.pending == nil {
		return Tooltip{}, false
	}
	return Tooltip{
		ContentID: c.pending.contentID,
		Span:      c.pending.span,
		Text:      c.pending.anchor.Text,
	}, true
}

// PendingAnchor returns the captured anchor of the live selection.
func (c *Controller) PendingAnchor() (anchor.Anchor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return anchor.Anchor{}, false
	}
	return c.pending.anchor, true
}

// Select handles a selection event over [sel.Start, sel.End) of the content's
// flattened text. Surrounding whitespace is trimmed; an empty selection clears
// back to Idle. Selections are ignored while a note is being composed.
func (c *Controller) Select(ctx context.Context, contentID string, sel anchor.Span) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == AddingNote {
		return nil
	}
	return c.selectLocked(ctx, contentID, sel)
}

func (c *Controller) selectLocked(ctx context.Context, contentID string, sel anchor.Span) error {
	content, doc, err := c.load(ctx, contentID)
	if err != nil {
		return err
	}
	flat := doc.Text()

	c.state = Selecting
	trimmed := anchor.TrimSpan(flat, sel)
	if trimmed.Empty() {
		c.reset()
		return nil
	}

	a, err := anchor.Capture(flat, trimmed, c.window)
	if err != nil {
		c.reset()
		return fmt.Errorf("capture selection: %w", err)
	}

	c.pending = &pending{contentID: content.Slug, span: trimmed, anchor: a}
	c.state = TooltipShown
	c.logger.DebugContext(ctx, "selection captured",
		slog.String("content", content.Slug),
		slog.Int("start", trimmed.Start),
		slog.Int("end", trimmed.End))
	return nil
}

// BeginNote opens note composition for the current selection.
func (c *Controller) BeginNote() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != TooltipShown {
		return fmt.Errorf("%w: begin note from %s", ErrInvalidTransition, c.state)
	}
	c.state = AddingNote
	return nil
}

// Submit stores the composed note and returns to Idle.
func (c *Controller) Submit(ctx context.Context, text string) (*models.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != AddingNote || c.pending == nil {
		return nil, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, c.state)
	}
	return c.submitLocked(ctx, text)
}

func (c *Controller) submitLocked(ctx context.Context, text string) (*models.Note, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyNoteText
	}

	note, err := c.store.Add(ctx, models.NoteDraft{
		ContentID:       c.pending.contentID,
		Text:            text,
		HighlightedText: c.pending.anchor.Text,
		ContextBefore:   c.pending.anchor.Before,
		ContextAfter:    c.pending.anchor.After,
	})
	if err != nil {
		return nil, fmt.Errorf("add note: %w", err)
	}

	c.reset()
	c.focused = note.ID
	return note, nil
}

// Create runs a whole selection, tooltip, compose and submit cycle under one
// lock, so concurrent callers cannot see or steal each other's selection. It
// refuses to interrupt a note that is being composed. On failure the
// controller is back in Idle.
func (c *Controller) Create(ctx context.Context, contentID string, sel anchor.Span, text string) (*models.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == AddingNote {
		return nil, fmt.Errorf("%w: create while composing", ErrInvalidTransition)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyNoteText
	}

	c.reset()
	if err := c.selectLocked(ctx, contentID, sel); err != nil {
		c.reset()
		return nil, err
	}
	if c.state != TooltipShown {
		c.reset()
		return nil, ErrEmptySelection
	}
	c.state = AddingNote

	note, err := c.submitLocked(ctx, text)
	if err != nil {
		c.reset()
		return nil, err
	}
	return note, nil
}

// Cancel abandons note composition.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != AddingNote {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, c.state)
	}
	c.reset()
	c.focused = uuid.Nil
	return nil
}

// ClickOutside dismisses the selection unless a note is being composed.
func (c *Controller) ClickOutside() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == AddingNote {
		return
	}
	c.reset()
}

// ClickHighlight focuses a persisted note and asks the host to open it.
func (c *Controller) ClickHighlight(id uuid.UUID) {
	c.mu.Lock()
	c.focused = id
	host := c.host
	c.mu.Unlock()

	host.NotifyOpenNote(id)
}

func (c *Controller) reset() {
	c.state = Idle
	c.pending = nil
}

// load fetches a content unit and parses its text blocks.
func (c *Controller) load(ctx context.Context, contentID string) (*models.Content, *highlight.Document, error) {
	content, err := c.provider.GetContent(ctx, contentID)
	if err != nil {
		return nil, nil, fmt.Errorf("get content %q: %w", contentID, err)
	}
	doc, err := highlight.Parse(content.TextHTML()...)
	if err != nil {
		return nil, nil, fmt.Errorf("parse content %q: %w", content.Slug, err)
	}
	return content, doc, nil
}
