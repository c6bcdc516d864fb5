// ABOUTME: Tests for terminal UI formatting functions.
// ABOUTME: Validates note and content display with colors disabled.

package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/models"
)

func init() {
	color.NoColor = true
}

func testNote() *models.Note {
	return &models.Note{
		ID:              uuid.New(),
		ContentID:       "compound-interest",
		Text:            "Check this number\nsecond line",
		HighlightedText: "seven percent",
		ContextBefore:   "grows at ",
		ContextAfter:    " a year",
		CreatedAt:       time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
	}
}

func TestFormatNoteListItem(t *testing.T) {
	note := testNote()

	output := FormatNoteListItem(note)

	for _, want := range []string{note.ID.String()[:6], "“seven percent”", "open", "Check this number", "compound-interest", "2024-01-02 03:04"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
	if strings.Contains(output, "second line") {
		t.Error("expected only the first line of note text")
	}
}

func TestFormatNoteHeader(t *testing.T) {
	note := testNote()
	note.Resolved = true

	output := FormatNoteHeader(note)

	if !strings.Contains(output, "grows at seven percent a year") {
		t.Errorf("expected context line, got %q", output)
	}
	if !strings.Contains(output, "resolved") {
		t.Error("expected resolved status")
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"fox", 10, "“fox”"},
		{"a  b\nc", 0, "“a b c”"},
		{"abcdefgh", 5, "“abcd…”"},
	}
	for _, tt := range tests {
		if got := Quote(tt.in, tt.max); got != tt.want {
			t.Errorf("Quote(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatContentListItem(t *testing.T) {
	c := models.NewContent("fox", "The Fox", models.CategoryAIML, nil)

	output := FormatContentListItem(ContentSummary{Content: c, Open: 2, Resolved: 1})

	for _, want := range []string{"fox", "The Fox", "[ai-ml]", "Open: 2", "Resolved: 1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in %q", want, output)
		}
	}
}

func TestFormatSubjectListItem(t *testing.T) {
	sub := models.NewSubject("bonds", "Bonds", models.CategoryFinance)
	sub.Description = "Fixed income basics"

	output := FormatSubjectListItem(SubjectSummary{Subject: sub, Lessons: 3})

	for _, want := range []string{"bonds", "Bonds", "[finance]", "Fixed income basics", "Lessons: 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got %q", want, output)
		}
	}
}

func TestFormatBlock(t *testing.T) {
	img := FormatBlock(models.Block{Type: models.BlockImage, Src: "/a.png", Alt: "chart"})
	if !strings.Contains(img, "/a.png") || !strings.Contains(img, "chart") {
		t.Errorf("unexpected image placeholder %q", img)
	}
	code := FormatBlock(models.Block{Type: models.BlockCode, Code: "a\nb", Language: "go"})
	if !strings.Contains(code, "[go block, 2 lines]") {
		t.Errorf("unexpected code placeholder %q", code)
	}
	if FormatBlock(models.NewTextBlock("<p>x</p>")) != "" {
		t.Error("expected text blocks to produce no placeholder")
	}
}

func TestFormatOrphans(t *testing.T) {
	if FormatOrphans(nil) != "" {
		t.Error("expected empty output for no orphans")
	}
	out := FormatOrphans([]*models.Note{testNote()})
	if !strings.Contains(out, "1 note(s)") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestFormatNoteText(t *testing.T) {
	content := "# Header\n\nSome **bold** text"

	output, err := FormatNoteText(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Header") {
		t.Error("expected output to contain header text")
	}
}
