// ABOUTME: SQLite durable backend for the note store.
// ABOUTME: Loads notes in insertion order and saves the whole collection atomically.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/models"
)

const noteColumns = `id, content_id, text, highlighted_text, context_before, context_after, resolved, created_at`

// NoteStore keeps the note collection in the notes table.
type NoteStore struct {
	db *sql.DB
}

func NewNoteStore(db *sql.DB) *NoteStore {
	return &NoteStore{db: db}
}

func scanNote(row scanner) (*models.Note, error) {
	n := &models.Note{}
	var idStr string
	if err := row.Scan(&idStr, &n.ContentID, &n.Text, &n.HighlightedText, &n.ContextBefore, &n.ContextAfter, &n.Resolved, &n.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	n.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid note ID in database: %w", err)
	}
	return n, nil
}

func (s *NoteStore) Load(ctx context.Context) ([]*models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("load notes: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Save replaces the stored collection in one transaction.
func (s *NoteStore) Save(ctx context.Context, notes []*models.Note) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes`); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, n := range notes {
		if _, err := stmt.ExecContext(ctx,
			n.ID.String(), n.ContentID, n.Text, n.HighlightedText, n.ContextBefore, n.ContextAfter, n.Resolved, n.CreatedAt,
		); err != nil {
			return fmt.Errorf("save note %s: %w", n.ShortID(), err)
		}
	}
	return tx.Commit()
}
