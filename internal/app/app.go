// ABOUTME: Wires config, logging, storage backends, and the annotation engine.
// ABOUTME: Shared by the CLI commands and the MCP server.

package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/anchor"
	"github.com/harper/marginalia/internal/charm"
	"github.com/harper/marginalia/internal/config"
	"github.com/harper/marginalia/internal/db"
	"github.com/harper/marginalia/internal/logx"
	"github.com/harper/marginalia/internal/models"
	"github.com/harper/marginalia/internal/notes"
	"github.com/harper/marginalia/internal/selection"
)

var (
	ErrPhraseNotFound = errors.New("phrase not found in content")
	ErrEmptySelection = selection.ErrEmptySelection
	ErrNoCharm        = errors.New("sync needs the charm backend (set backend: charm)")
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *sql.DB
	Notes      *notes.Store
	Controller *selection.Controller
	Charm      *charm.Client
}

type options struct {
	host    selection.Host
	durable notes.Durable
}

// Option configures Open.
type Option func(*options)

// WithHost sets who is told when a highlight is activated.
func WithHost(h selection.Host) Option {
	return func(o *options) {
		o.host = h
	}
}

// WithDurable overrides the configured note backend.
func WithDurable(d notes.Durable) Option {
	return func(o *options) {
		o.durable = d
	}
}

// Open connects the content database, picks the note backend, and loads notes.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = logx.Discard()
	}

	conn, err := db.Open(ctx, cfg.DBPath, db.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, DB: conn}

	durable := o.durable
	if durable == nil {
		switch cfg.Backend {
		case config.BackendCharm:
			a.Charm = charm.NewClient(
				charm.WithHost(cfg.Charm.Host),
				charm.WithAutoSync(cfg.Charm.AutoSync),
			)
			durable = charm.NewNoteStore(a.Charm)
		default:
			durable = db.NewNoteStore(conn)
		}
	}

	a.Notes = notes.New(durable, notes.WithLogger(logger))
	a.Notes.Load(ctx)

	a.Controller = selection.New(a.Notes, db.Provider{DB: conn}, o.host,
		selection.WithContextWindow(cfg.ContextWindow),
		selection.WithStyles(cfg.Styles),
		selection.WithLogger(logger),
	)

	logger.DebugContext(ctx, "marginalia ready",
		slog.String("backend", cfg.Backend),
		slog.String("db", cfg.DBPath),
		slog.Int("notes", len(a.Notes.All())))
	return a, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

// FlatText returns the annotatable text of a content unit.
func (a *App) FlatText(ctx context.Context, slug string) (*models.Content, string, error) {
	r, err := a.Controller.Render(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	return r.Content, r.Text, nil
}

// FindPhrase returns the span of the n-th (1-based) occurrence of phrase.
func (a *App) FindPhrase(ctx context.Context, slug, phrase string, occurrence int) (anchor.Span, error) {
	_, flat, err := a.FlatText(ctx, slug)
	if err != nil {
		return anchor.Span{}, err
	}
	if occurrence < 1 {
		occurrence = 1
	}
	spans := anchor.Occurrences(flat, phrase)
	if len(spans) < occurrence {
		return anchor.Span{}, fmt.Errorf("%w: %q (occurrence %d of %d)", ErrPhraseNotFound, phrase, occurrence, len(spans))
	}
	return spans[occurrence-1], nil
}

// Annotate creates a note on sel in one controller step. Concurrent callers
// are serialized by the controller.
func (a *App) Annotate(ctx context.Context, slug string, sel anchor.Span, text string) (*models.Note, error) {
	return a.Controller.Create(ctx, slug, sel, text)
}

// OpenNote activates a highlight, which hands the note to the host.
func (a *App) OpenNote(prefix string) (*models.Note, error) {
	n, err := a.Notes.FindByPrefix(prefix)
	if err != nil {
		return nil, err
	}
	a.Controller.ClickHighlight(n.ID)
	return n, nil
}

// ListNotes returns notes of one content unit, or all notes when slug is
// empty, optionally only the open ones.
func (a *App) ListNotes(slug string, openOnly bool) []*models.Note {
	var all []*models.Note
	if slug == "" {
		all = a.Notes.All()
	} else {
		all = a.Notes.ListFor(slug)
	}
	if !openOnly {
		return all
	}
	var out []*models.Note
	for _, n := range all {
		if !n.Resolved {
			out = append(out, n)
		}
	}
	return out
}

// SearchNotes uses the FTS index on the sqlite backend and a case-insensitive
// substring scan otherwise.
func (a *App) SearchNotes(ctx context.Context, query string, limit int) ([]*models.Note, error) {
	if a.Charm == nil {
		results, err := db.SearchNotes(ctx, a.DB, query, limit)
		if err != nil {
			return nil, err
		}
		out := make([]*models.Note, 0, len(results))
		for _, r := range results {
			out = append(out, r.Note)
		}
		return out, nil
	}

	q := strings.ToLower(query)
	var out []*models.Note
	for _, n := range a.Notes.All() {
		if strings.Contains(strings.ToLower(n.Text), q) || strings.Contains(strings.ToLower(n.HighlightedText), q) {
			out = append(out, n)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// SetResolved resolves or reopens a note by id prefix.
func (a *App) SetResolved(ctx context.Context, prefix string, resolved bool) (*models.Note, error) {
	n, err := a.Notes.FindByPrefix(prefix)
	if err != nil {
		return nil, err
	}
	if resolved {
		a.Notes.Resolve(ctx, n.ID)
	} else {
		a.Notes.Reopen(ctx, n.ID)
	}
	n.Resolved = resolved
	return n, nil
}

func (a *App) DeleteNote(ctx context.Context, id uuid.UUID) bool {
	return a.Notes.Delete(ctx, id)
}

// DeleteContent removes a content unit and its notes from every backend.
func (a *App) DeleteContent(ctx context.Context, slug string) (int, error) {
	if err := db.DeleteContent(ctx, a.DB, slug); err != nil {
		return 0, err
	}
	removed := 0
	for _, n := range a.Notes.ListFor(slug) {
		if a.Notes.Delete(ctx, n.ID) {
			removed++
		}
	}
	return removed, nil
}

// RenameContent changes a content unit's slug and moves its notes with it in
// the note store, whichever backend holds them. It returns how many notes moved.
func (a *App) RenameContent(ctx context.Context, slug, newSlug string) (int, error) {
	newSlug = strings.TrimSpace(newSlug)
	if newSlug == "" {
		return 0, fmt.Errorf("new slug cannot be empty")
	}
	c, err := db.GetContentBySlug(ctx, a.DB, slug)
	if err != nil {
		return 0, err
	}
	if newSlug == c.Slug {
		return 0, nil
	}
	if _, err := db.GetContentBySlug(ctx, a.DB, newSlug); err == nil {
		return 0, fmt.Errorf("%w: %s", db.ErrDuplicateSlug, newSlug)
	} else if !errors.Is(err, db.ErrContentNotFound) {
		return 0, err
	}

	c.Slug = newSlug
	if err := db.UpdateContent(ctx, a.DB, c); err != nil {
		return 0, fmt.Errorf("update content %q: %w", slug, err)
	}
	a.Controller.ClickOutside()
	return a.Notes.Rekey(ctx, slug, newSlug), nil
}

// SyncText replaces a content unit's text and re-renders it so callers can
// report notes whose anchors no longer match.
func (a *App) SyncText(ctx context.Context, slug, html string) (*selection.Rendered, error) {
	c, err := db.GetContent(ctx, a.DB, slug)
	if err != nil {
		return nil, err
	}
	c.ReplaceText(html)
	if err := db.UpdateContent(ctx, a.DB, c); err != nil {
		return nil, fmt.Errorf("update content %q: %w", slug, err)
	}
	return a.Controller.Render(ctx, c.Slug)
}

// Sync pushes and pulls the charm backend, then reloads notes.
func (a *App) Sync(ctx context.Context) error {
	if a.Charm == nil {
		return ErrNoCharm
	}
	if err := a.Charm.Sync(); err != nil {
		return fmt.Errorf("charm sync: %w", err)
	}
	a.Notes.Load(ctx)
	return nil
}
