// ABOUTME: Tests for the note store lifecycle and mutations.
// ABOUTME: Uses an in-memory durable fake to observe persistence.

package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/models"
)

type memDurable struct {
	saved   []*models.Note
	saves   int
	loadErr error
	saveErr error
}

func (m *memDurable) Load(context.Context) ([]*models.Note, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.saved, nil
}

func (m *memDurable) Save(_ context.Context, notes []*models.Note) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = notes
	return nil
}

func draft(contentID, text string) models.NoteDraft {
	return models.NoteDraft{
		ContentID:       contentID,
		Text:            "note on " + text,
		HighlightedText: text,
	}
}

func TestAddAndListFor(t *testing.T) {
	ctx := context.Background()
	d := &memDurable{}
	s := New(d)

	note, err := s.Add(ctx, models.NoteDraft{ContentID: "p1", HighlightedText: "fox", ContextBefore: "brown ", ContextAfter: " jumps"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got := s.ListFor("p1")
	if len(got) != 1 {
		t.Fatalf("expected 1 note, got %d", len(got))
	}
	if got[0].ID != note.ID || got[0].ID == uuid.Nil {
		t.Errorf("expected generated id %v, got %v", note.ID, got[0].ID)
	}
	if got[0].Resolved {
		t.Error("expected new note to be open")
	}
	if len(d.saved) != 1 {
		t.Errorf("expected note to be persisted, got %d saved", len(d.saved))
	}
}

func TestAddGeneratesUniqueIDs(t *testing.T) {
	s := New(nil)
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 50; i++ {
		n, err := s.Add(context.Background(), draft("p1", "same"))
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if seen[n.ID] {
			t.Fatalf("duplicate id %v", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestAddUsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := New(nil, WithClock(func() time.Time { return fixed }))

	n, err := s.Add(context.Background(), draft("p1", "x"))
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !n.CreatedAt.Equal(fixed) {
		t.Errorf("expected %v, got %v", fixed, n.CreatedAt)
	}
}

func TestAddRejectsMalformed(t *testing.T) {
	d := &memDurable{}
	s := New(d)

	_, err := s.Add(context.Background(), models.NoteDraft{ContentID: "p1"})
	if !errors.Is(err, models.ErrMalformedNote) {
		t.Errorf("expected ErrMalformedNote, got %v", err)
	}
	if d.saves != 0 {
		t.Errorf("expected nothing persisted, got %d saves", d.saves)
	}
	if len(s.All()) != 0 {
		t.Error("expected store to stay empty")
	}
}

func TestListForKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	for _, text := range []string{"zeta", "alpha", "mu"} {
		if _, err := s.Add(ctx, draft("p1", text)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if _, err := s.Add(ctx, draft("p2", "other")); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got := s.ListFor("p1")
	if len(got) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(got))
	}
	for i, want := range []string{"zeta", "alpha", "mu"} {
		if got[i].HighlightedText != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].HighlightedText)
		}
	}
}

func TestListForReturnsCopies(t *testing.T) {
	s := New(nil)
	n, _ := s.Add(context.Background(), draft("p1", "x"))

	s.ListFor("p1")[0].Resolved = true

	got, _ := s.Get(n.ID)
	if got.Resolved {
		t.Error("expected store state to be unaffected by caller mutation")
	}
}

func TestResolveAndReopen(t *testing.T) {
	ctx := context.Background()
	d := &memDurable{}
	s := New(d)
	n, _ := s.Add(ctx, draft("p1", "x"))

	if !s.Resolve(ctx, n.ID) {
		t.Fatal("expected resolve to find the note")
	}
	got, _ := s.Get(n.ID)
	if !got.Resolved || !d.saved[0].Resolved {
		t.Error("expected note resolved in memory and storage")
	}

	if !s.Reopen(ctx, n.ID) {
		t.Fatal("expected reopen to find the note")
	}
	got, _ = s.Get(n.ID)
	if got.Resolved {
		t.Error("expected note reopened")
	}
}

func TestResolveUnknownIsNoop(t *testing.T) {
	d := &memDurable{}
	s := New(d)

	if s.Resolve(context.Background(), uuid.New()) {
		t.Error("expected resolve of unknown id to report false")
	}
	if d.saves != 0 {
		t.Errorf("expected no save, got %d", d.saves)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	d := &memDurable{}
	s := New(d)
	keep, _ := s.Add(ctx, draft("p1", "keep"))
	drop, _ := s.Add(ctx, draft("p1", "drop"))

	if !s.Delete(ctx, drop.ID) {
		t.Fatal("expected delete to find the note")
	}

	got := s.ListFor("p1")
	if len(got) != 1 || got[0].ID != keep.ID {
		t.Errorf("expected only kept note, got %v", got)
	}
	if len(d.saved) != 1 || d.saved[0].ID != keep.ID {
		t.Errorf("expected durable storage to drop the note, got %v", d.saved)
	}

	if s.Delete(ctx, drop.ID) {
		t.Error("expected second delete to be a no-op")
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	d := &memDurable{loadErr: errors.New("disk gone")}
	s := New(d)

	s.Load(context.Background())

	if len(s.All()) != 0 {
		t.Error("expected empty store after failed load")
	}
}

func TestLoadRestoresCollection(t *testing.T) {
	ctx := context.Background()
	d := &memDurable{}
	first := New(d)
	n, _ := first.Add(ctx, draft("p1", "x"))

	second := New(d)
	second.Load(ctx)

	got, ok := second.Get(n.ID)
	if !ok || got.HighlightedText != "x" {
		t.Errorf("expected loaded note, got %v", got)
	}
}

func TestSaveFailureKeepsMemory(t *testing.T) {
	d := &memDurable{saveErr: errors.New("read-only")}
	s := New(d)

	n, err := s.Add(context.Background(), draft("p1", "x"))
	if err != nil {
		t.Fatalf("expected save failure to be swallowed, got %v", err)
	}
	if _, ok := s.Get(n.ID); !ok {
		t.Error("expected note to stay in memory")
	}
	if err := s.Flush(context.Background()); err == nil {
		t.Error("expected explicit flush to report the failure")
	}
}

func TestFindByPrefix(t *testing.T) {
	s := New(nil)
	n, _ := s.Add(context.Background(), draft("p1", "x"))

	got, err := s.FindByPrefix(n.ID.String()[:8])
	if err != nil || got.ID != n.ID {
		t.Fatalf("expected match, got %v %v", got, err)
	}

	got, err = s.FindByPrefix(n.ID.String())
	if err != nil || got.ID != n.ID {
		t.Fatalf("expected full id match, got %v %v", got, err)
	}

	if _, err := s.FindByPrefix("abc"); !errors.Is(err, ErrPrefixTooShort) {
		t.Errorf("expected ErrPrefixTooShort, got %v", err)
	}
	if _, err := s.FindByPrefix("zzzzzzzz"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	d := &memDurable{}
	s := New(d)
	_, _ = s.Add(ctx, draft("p1", "old"))

	imported := models.NewNote(draft("p2", "new"), time.Now())
	s.Replace(ctx, []*models.Note{imported})

	if len(s.ListFor("p1")) != 0 || len(s.ListFor("p2")) != 1 {
		t.Error("expected collection to be replaced")
	}
	if len(d.saved) != 1 || d.saved[0].ID != imported.ID {
		t.Error("expected replacement to be persisted")
	}
}

func TestRekeyMovesNotesAndPersists(t *testing.T) {
	ctx := context.Background()
	d := &memDurable{}
	s := New(d)

	for _, text := range []string{"fox", "dog"} {
		if _, err := s.Add(ctx, draft("old", text)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}
	if _, err := s.Add(ctx, draft("other", "cat")); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	saves := d.saves

	if moved := s.Rekey(ctx, "old", "new"); moved != 2 {
		t.Errorf("expected 2 notes moved, got %d", moved)
	}
	if got := s.ListFor("old"); len(got) != 0 {
		t.Errorf("expected no notes left under old key, got %d", len(got))
	}
	if got := s.ListFor("new"); len(got) != 2 {
		t.Errorf("expected 2 notes under new key, got %d", len(got))
	}
	if got := s.ListFor("other"); len(got) != 1 {
		t.Errorf("expected unrelated note untouched, got %d", len(got))
	}
	if d.saves != saves+1 {
		t.Errorf("expected one save after rekey, got %d", d.saves-saves)
	}

	if moved := s.Rekey(ctx, "missing", "new"); moved != 0 {
		t.Errorf("expected nothing moved, got %d", moved)
	}
	if d.saves != saves+1 {
		t.Errorf("expected no save when nothing moved")
	}
}
