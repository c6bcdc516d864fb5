// ABOUTME: Terminal UI formatting for marginalia output.
// ABOUTME: Uses glamour for note markdown and fatih/color for styling.

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"github.com/harper/marginalia/internal/models"
)

var (
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

const timeLayout = "2006-01-02 15:04"

// Quote shortens a highlighted passage for one-line display.
func Quote(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if max > 1 && len(r) > max {
		s = string(r[:max-1]) + "…"
	}
	return "“" + s + "”"
}

func status(n *models.Note) string {
	if n.Resolved {
		return green("resolved")
	}
	return yellow("open")
}

func FormatNoteListItem(note *models.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s  %s\n", faint(note.ShortID()), bold(Quote(note.HighlightedText, 50)), status(note)))

	if text := firstLine(note.Text); text != "" {
		sb.WriteString(fmt.Sprintf("          %s\n", text))
	}

	sb.WriteString(fmt.Sprintf("          %s %s  %s %s\n",
		faint("On:"), cyan(note.ContentID),
		faint("Created:"), faint(note.CreatedAt.Format(timeLayout))))

	return sb.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " " + faint("…")
	}
	return s
}

// FormatNoteText renders note markdown for the terminal.
func FormatNoteText(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to raw content if renderer fails
		return content, nil //nolint:nilerr // Intentional fallback
	}

	out, err := renderer.Render(content)
	if err != nil {
		// Fallback to raw content if rendering fails
		return content, nil //nolint:nilerr // Intentional fallback
	}
	return out, nil
}

func FormatNoteHeader(note *models.Note) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", bold(Quote(note.HighlightedText, 0))))
	sb.WriteString(fmt.Sprintf("%s %s%s%s\n", faint("In context:"),
		faint(note.ContextBefore), bold(note.HighlightedText), faint(note.ContextAfter)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("ID:"), faint(note.ID.String())))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Content:"), cyan(note.ContentID)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Status:"), status(note)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Created:"), faint(note.CreatedAt.Format(timeLayout))))

	sb.WriteString(Separator())
	return sb.String()
}

// ContentSummary is a content unit with its note counts.
type ContentSummary struct {
	Content  *models.Content
	Open     int
	Resolved int
}

func FormatContentListItem(s ContentSummary) string {
	c := s.Content
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s %s\n", cyan(c.Slug), bold(c.Title), faint(fmt.Sprintf("[%s]", c.Category))))
	sb.WriteString(fmt.Sprintf("          %s %d  %s %d  %s %d\n",
		faint("Order:"), c.Order,
		faint("Open:"), s.Open,
		faint("Resolved:"), s.Resolved))

	return sb.String()
}

// SubjectSummary is a subject with its lesson count.
type SubjectSummary struct {
	Subject *models.Subject
	Lessons int
}

func FormatSubjectListItem(s SubjectSummary) string {
	sub := s.Subject
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s %s\n", cyan(sub.Slug), bold(sub.Title), faint(fmt.Sprintf("[%s]", sub.Category))))
	if sub.Description != "" {
		sb.WriteString(fmt.Sprintf("          %s\n", sub.Description))
	}
	sb.WriteString(fmt.Sprintf("          %s %d  %s %d\n",
		faint("Order:"), sub.Order,
		faint("Lessons:"), s.Lessons))

	return sb.String()
}

func FormatContentHeader(c *models.Content) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s\n", bold(c.Title)))
	if c.Description != "" {
		sb.WriteString(c.Description + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Slug:"), cyan(c.Slug)))
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Category:"), c.Category))
	if len(c.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("%s %s\n", faint("Tags:"), cyan(strings.Join(c.Tags, ", "))))
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", faint("Updated:"), faint(c.UpdatedAt.Format(timeLayout))))

	sb.WriteString(Separator())
	return sb.String()
}

// FormatBlock renders a non-text block as a one-line placeholder.
func FormatBlock(b models.Block) string {
	switch b.Type {
	case models.BlockImage:
		label := b.Alt
		if b.Caption != "" {
			label = b.Caption
		}
		return faint(fmt.Sprintf("[image: %s] %s", b.Src, label)) + "\n"
	case models.BlockCode:
		lang := b.Language
		if lang == "" {
			lang = "code"
		}
		return faint(fmt.Sprintf("[%s block, %d lines]", lang, strings.Count(b.Code, "\n")+1)) + "\n"
	default:
		return ""
	}
}

func FormatOrphans(notes []*models.Note) string {
	if len(notes) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n%s\n", yellow(fmt.Sprintf("%d note(s) no longer match the text:", len(notes)))))
	for _, n := range notes {
		sb.WriteString(fmt.Sprintf("  %s  %s\n", faint(n.ShortID()), Quote(n.HighlightedText, 50)))
	}
	return sb.String()
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}
