// ABOUTME: Tests for the SQLite note backend.
// ABOUTME: Verifies order and field preservation across save and load.

package db

import (
	"context"
	"testing"
	"time"

	"github.com/harper/marginalia/internal/models"
)

func noteFor(contentID, text string) *models.Note {
	return models.NewNote(models.NoteDraft{
		ContentID:       contentID,
		Text:            "about " + text,
		HighlightedText: text,
		ContextBefore:   "before ",
		ContextAfter:    " after",
	}, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
}

func TestNoteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewNoteStore(openTest(t))

	in := []*models.Note{noteFor("p1", "zeta"), noteFor("p1", "alpha"), noteFor("p2", "mu")}
	in[1].Resolved = true
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d notes, got %d", len(in), len(out))
	}
	for i := range in {
		want, got := in[i], out[i]
		if got.ID != want.ID || got.ContentID != want.ContentID || got.HighlightedText != want.HighlightedText {
			t.Errorf("note %d: expected %+v, got %+v", i, want, got)
		}
		if got.Text != want.Text || got.ContextBefore != want.ContextBefore || got.ContextAfter != want.ContextAfter {
			t.Errorf("note %d: text fields differ: %+v", i, got)
		}
		if got.Resolved != want.Resolved {
			t.Errorf("note %d: expected resolved %v", i, want.Resolved)
		}
		if !got.CreatedAt.Equal(want.CreatedAt) {
			t.Errorf("note %d: expected created %v, got %v", i, want.CreatedAt, got.CreatedAt)
		}
	}
}

func TestNoteStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewNoteStore(openTest(t))
	first := noteFor("p1", "a")
	_ = store.Save(ctx, []*models.Note{first, noteFor("p1", "b")})

	if err := store.Save(ctx, []*models.Note{first}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	out, _ := store.Load(ctx)
	if len(out) != 1 || out[0].ID != first.ID {
		t.Errorf("expected collection to be replaced, got %+v", out)
	}
}

func TestNoteStoreEmpty(t *testing.T) {
	out, err := NewNoteStore(openTest(t)).Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no notes, got %d", len(out))
	}
}
