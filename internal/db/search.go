// ABOUTME: FTS5 full-text search operations for notes.
// ABOUTME: Provides ranked search across note text and highlighted passages.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/harper/marginalia/internal/models"
)

type SearchResult struct {
	*models.Note
	Rank float64
}

// SearchNotes runs an FTS5 match over note text and highlighted text.
func SearchNotes(ctx context.Context, db *sql.DB, query string, limit int) ([]*SearchResult, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT n.id, n.content_id, n.text, n.highlighted_text, n.context_before, n.context_after, n.resolved, n.created_at, rank
		 FROM notes_fts
		 JOIN notes n ON notes_fts.rowid = n.seq
		 WHERE notes_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*SearchResult
	for rows.Next() {
		var rank float64
		row := rankScanner{rows: rows, rank: &rank}
		n, err := scanNote(row)
		if err != nil {
			return nil, err
		}
		results = append(results, &SearchResult{Note: n, Rank: rank})
	}
	return results, rows.Err()
}

// rankScanner appends the rank column to a note scan.
type rankScanner struct {
	rows *sql.Rows
	rank *float64
}

func (r rankScanner) Scan(dest ...any) error {
	return r.rows.Scan(append(dest, r.rank)...)
}
