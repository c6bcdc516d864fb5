// ABOUTME: Note model representing a highlight-anchored annotation.
// ABOUTME: Provides the draft type, validation, and anchor accessors.

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrMalformedNote = errors.New("malformed note")

type Note struct {
	ID              uuid.UUID `json:"id" yaml:"id"`
	ContentID       string    `json:"content_id" yaml:"content_id"`
	Text            string    `json:"text" yaml:"text"`
	HighlightedText string    `json:"highlighted_text" yaml:"highlighted_text"`
	ContextBefore   string    `json:"context_before" yaml:"context_before"`
	ContextAfter    string    `json:"context_after" yaml:"context_after"`
	Resolved        bool      `json:"resolved" yaml:"resolved"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// NoteDraft carries the caller-supplied fields of a note before the store
// assigns identity and timestamp.
type NoteDraft struct {
	ContentID       string
	Text            string
	HighlightedText string
	ContextBefore   string
	ContextAfter    string
}

func (d NoteDraft) Validate() error {
	if strings.TrimSpace(d.ContentID) == "" {
		return fmt.Errorf("%w: missing content id", ErrMalformedNote)
	}
	if d.HighlightedText == "" {
		return fmt.Errorf("%w: empty highlighted text", ErrMalformedNote)
	}
	return nil
}

func NewNote(d NoteDraft, now time.Time) *Note {
	return &Note{
		ID:              uuid.New(),
		ContentID:       d.ContentID,
		Text:            d.Text,
		HighlightedText: d.HighlightedText,
		ContextBefore:   d.ContextBefore,
		ContextAfter:    d.ContextAfter,
		CreatedAt:       now,
	}
}

// Clone returns a copy safe to hand out of the store.
func (n *Note) Clone() *Note {
	c := *n
	return &c
}

func (n *Note) ShortID() string {
	return n.ID.String()[:6]
}
