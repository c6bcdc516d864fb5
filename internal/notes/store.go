// ABOUTME: In-memory note store backed by a pluggable durable collection.
// ABOUTME: Persists the whole collection after every mutation, best effort.

package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/logx"
	"github.com/harper/marginalia/internal/models"
)

var (
	ErrPrefixTooShort  = errors.New("prefix must be at least 6 characters")
	ErrAmbiguousPrefix = errors.New("prefix matches multiple notes")
	ErrNoteNotFound    = errors.New("note not found")
)

// Durable loads and saves the full note collection.
type Durable interface {
	Load(ctx context.Context) ([]*models.Note, error)
	Save(ctx context.Context, notes []*models.Note) error
}

type Store struct {
	mu      sync.Mutex
	notes   []*models.Note
	durable Durable
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty store. Call Load to populate it from durable storage.
// A nil durable keeps notes in memory only.
func New(durable Durable, opts ...Option) *Store {
	s := &Store{
		durable: durable,
		logger:  logx.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the durable one. When the
// durable store fails the store starts empty.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = nil
	if s.durable == nil {
		return
	}

	loaded, err := s.durable.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "note store unavailable, starting empty", slog.Any("err", err))
		return
	}
	for _, n := range loaded {
		if n != nil {
			s.notes = append(s.notes, n.Clone())
		}
	}
}

// Flush writes the in-memory collection to durable storage.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.durable == nil {
		return nil
	}
	if err := s.durable.Save(ctx, s.snapshot()); err != nil {
		return fmt.Errorf("flush notes: %w", err)
	}
	return nil
}

// Add validates the draft, assigns an id and timestamp, and persists.
func (s *Store) Add(ctx context.Context, d models.NoteDraft) (*models.Note, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note := models.NewNote(d, s.now())
	s.notes = append(s.notes, note)
	s.persist(ctx)

	return note.Clone(), nil
}

// Delete removes a note. It reports whether a note was removed.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// Resolve marks a note resolved. Unknown ids are ignored.
func (s *Store) Resolve(ctx context.Context, id uuid.UUID) bool {
	return s.setResolved(ctx, id, true)
}

// Reopen clears the resolved flag. Nothing in the store forbids it; whether to
// offer it is up to the caller.
func (s *Store) Reopen(ctx context.Context, id uuid.UUID) bool {
	return s.setResolved(ctx, id, false)
}

func (s *Store) setResolved(ctx context.Context, id uuid.UUID, resolved bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notes {
		if n.ID == id {
			n.Resolved = resolved
			s.persist(ctx)
			return true
		}
	}
	return false
}

// ListFor returns the notes of one content unit in insertion order.
func (s *Store) ListFor(contentID string) []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Note
	for _, n := range s.notes {
		if n.ContentID == contentID {
			out = append(out, n.Clone())
		}
	}
	return out
}

func (s *Store) All() []*models.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Get(id uuid.UUID) (*models.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notes {
		if n.ID == id {
			return n.Clone(), true
		}
	}
	return nil, false
}

// FindByPrefix finds a note by id prefix (minimum 6 chars).
func (s *Store) FindByPrefix(prefix string) (*models.Note, error) {
	if id, err := uuid.Parse(prefix); err == nil {
		if n, ok := s.Get(id); ok {
			return n, nil
		}
		return nil, ErrNoteNotFound
	}
	if len(prefix) < 6 {
		return nil, ErrPrefixTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []*models.Note
	for _, n := range s.notes {
		if strings.HasPrefix(n.ID.String(), strings.ToLower(prefix)) {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNoteNotFound
	}
	if len(matches) > 1 {
		return nil, fmt.Errorf("%w: %d matches", ErrAmbiguousPrefix, len(matches))
	}
	return matches[0].Clone(), nil
}

// Rekey moves every note of one content unit to another content id and
// persists. It returns how many notes moved.
func (s *Store) Rekey(ctx context.Context, from, to string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for _, n := range s.notes {
		if n.ContentID == from {
			n.ContentID = to
			moved++
		}
	}
	if moved > 0 {
		s.persist(ctx)
	}
	return moved
}

// Replace swaps in a whole collection, e.g. from an import, and persists it.
func (s *Store) Replace(ctx context.Context, notes []*models.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := make([]*models.Note, 0, len(notes))
	for _, n := range notes {
		fresh = append(fresh, n.Clone())
	}
	s.notes = fresh
	s.persist(ctx)
}

func (s *Store) snapshot() []*models.Note {
	out := make([]*models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// persist saves under the held lock. Failures leave memory authoritative.
func (s *Store) persist(ctx context.Context) {
	if s.durable == nil {
		return
	}
	if err := s.durable.Save(ctx, s.snapshot()); err != nil {
		s.logger.WarnContext(ctx, "failed to persist notes", slog.Any("err", err))
	}
}
