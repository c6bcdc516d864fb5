// ABOUTME: Database operations for subjects, the groups of lessons in a category.
// ABOUTME: Provides CRUD, ordering, and lookup by slug or id.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/models"
)

var (
	ErrSubjectNotFound  = errors.New("subject not found")
	ErrDuplicateSubject = errors.New("subject slug already exists")
	ErrSubjectCategory  = errors.New("content and subject categories differ")
)

const subjectColumns = `id, slug, title, description, category, sort_order, created_at, updated_at`

func scanSubject(row scanner) (*models.Subject, error) {
	s := &models.Subject{}
	var idStr, category string
	if err := row.Scan(&idStr, &s.Slug, &s.Title, &s.Description, &category, &s.Order, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	s.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid subject ID in database: %w", err)
	}
	s.Category = models.Category(category)
	return s, nil
}

func CreateSubject(ctx context.Context, db *sql.DB, s *models.Subject) error {
	if _, err := GetSubject(ctx, db, s.Slug); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateSubject, s.Slug)
	} else if !errors.Is(err, ErrSubjectNotFound) {
		return err
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO subjects (`+subjectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.Slug, s.Title, s.Description, string(s.Category), s.Order, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// GetSubject looks a subject up by slug, falling back to its UUID.
func GetSubject(ctx context.Context, db *sql.DB, id string) (*models.Subject, error) {
	s, err := scanSubject(db.QueryRowContext(ctx,
		`SELECT `+subjectColumns+` FROM subjects WHERE slug = ? OR id = ?`, id, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubjectNotFound
	}
	return s, err
}

// ListSubjects returns subjects in display order. An empty category lists
// every subject.
func ListSubjects(ctx context.Context, db *sql.DB, category models.Category) ([]*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY sort_order, created_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func SetSubjectOrder(ctx context.Context, db *sql.DB, slug string, order int) error {
	result, err := db.ExecContext(ctx,
		`UPDATE subjects SET sort_order = ?, updated_at = ? WHERE slug = ?`,
		order, time.Now(), slug,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

// AssignSubject links a content unit to a subject of the same category. An
// empty subject slug detaches the content.
func AssignSubject(ctx context.Context, db *sql.DB, contentSlug, subjectSlug string) error {
	c, err := GetContentBySlug(ctx, db, contentSlug)
	if err != nil {
		return err
	}
	c.SubjectID = uuid.Nil
	if subjectSlug != "" {
		s, err := GetSubject(ctx, db, subjectSlug)
		if err != nil {
			return err
		}
		if s.Category != c.Category {
			return fmt.Errorf("%w: %s is %s, %s is %s", ErrSubjectCategory, c.Slug, c.Category, s.Slug, s.Category)
		}
		c.SubjectID = s.ID
	}
	return UpdateContent(ctx, db, c)
}

// DeleteSubject removes a subject. Its lessons stay, detached from any subject.
func DeleteSubject(ctx context.Context, db *sql.DB, slug string) error {
	s, err := GetSubject(ctx, db, slug)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, s.ID.String()); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE contents SET subject_id = '' WHERE subject_id = ?`, s.ID.String()); err != nil {
		return err
	}
	return tx.Commit()
}
