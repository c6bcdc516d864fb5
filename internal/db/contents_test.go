// ABOUTME: Tests for content unit database operations.
// ABOUTME: Covers create, lookup by slug and id, ordering, and cascading delete.

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/harper/marginalia/internal/models"
)

func newContent(slug string, category models.Category) *models.Content {
	c := models.NewContent(slug, "Title "+slug, category, []models.Block{
		models.NewTextBlock("<p>The quick brown fox</p>"),
		{ID: "img", Type: models.BlockImage, Src: "/fox.png", Alt: "fox"},
	})
	c.Tags = []string{"animals"}
	return c
}

func TestCreateAndGetContent(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	c := newContent("fox", models.CategoryFinance)

	if err := CreateContent(ctx, db, c); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for _, key := range []string{"fox", c.ID.String()} {
		got, err := GetContent(ctx, db, key)
		if err != nil {
			t.Fatalf("get %q failed: %v", key, err)
		}
		if got.ID != c.ID || got.Slug != "fox" || got.Title != c.Title {
			t.Errorf("unexpected content %+v", got)
		}
		if len(got.Blocks) != 2 || got.Blocks[1].Src != "/fox.png" {
			t.Errorf("expected blocks to round-trip, got %+v", got.Blocks)
		}
		if len(got.Tags) != 1 || got.Tags[0] != "animals" {
			t.Errorf("expected tags to round-trip, got %v", got.Tags)
		}
	}
}

func TestCreateContentDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	_ = CreateContent(ctx, db, newContent("fox", models.CategoryFinance))

	err := CreateContent(ctx, db, newContent("fox", models.CategoryAIML))
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestGetContentNotFound(t *testing.T) {
	db := openTest(t)

	if _, err := GetContent(context.Background(), db, "missing"); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func TestListContentsOrderAndCategory(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	for _, c := range []*models.Content{
		newContent("a", models.CategoryFinance),
		newContent("b", models.CategoryMathematics),
		newContent("c", models.CategoryFinance),
	} {
		if err := CreateContent(ctx, db, c); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if err := SetContentOrder(ctx, db, "c", -1); err != nil {
		t.Fatalf("order failed: %v", err)
	}

	all, err := ListContents(ctx, db, ContentFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 || all[0].Slug != "c" {
		t.Errorf("expected c first, got %v", slugs(all))
	}

	finance, err := ListContents(ctx, db, ContentFilter{Category: models.CategoryFinance})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(finance) != 2 {
		t.Errorf("expected 2 finance contents, got %v", slugs(finance))
	}

	if err := SetContentOrder(ctx, db, "zzz", 1); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func TestUpdateContentMovesNotes(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	c := newContent("old", models.CategoryFinance)
	_ = CreateContent(ctx, db, c)
	store := NewNoteStore(db)
	_ = store.Save(ctx, []*models.Note{noteFor("old", "fox")})

	c.Slug = "new"
	c.ReplaceText("<p>A slow red fox</p>")
	if err := UpdateContent(ctx, db, c); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := GetContentBySlug(ctx, db, "new")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.TextHTML()[0] != "<p>A slow red fox</p>" {
		t.Errorf("expected replaced text, got %v", got.TextHTML())
	}
	notes, _ := store.Load(ctx)
	if len(notes) != 1 || notes[0].ContentID != "new" {
		t.Errorf("expected note to follow slug, got %+v", notes)
	}
}

func TestDeleteContentCascadesNotes(t *testing.T) {
	ctx := context.Background()
	db := openTest(t)
	_ = CreateContent(ctx, db, newContent("a", models.CategoryFinance))
	_ = CreateContent(ctx, db, newContent("b", models.CategoryFinance))
	store := NewNoteStore(db)
	_ = store.Save(ctx, []*models.Note{noteFor("a", "x"), noteFor("b", "y")})

	if err := DeleteContent(ctx, db, "a"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	notes, _ := store.Load(ctx)
	if len(notes) != 1 || notes[0].ContentID != "b" {
		t.Errorf("expected only b's note to remain, got %+v", notes)
	}
	if err := DeleteContent(ctx, db, "a"); !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func slugs(cs []*models.Content) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.Slug)
	}
	return out
}
