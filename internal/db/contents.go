// ABOUTME: Database operations for content units.
// ABOUTME: Implements the content provider lookup by slug or id plus CRUD.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harper/marginalia/internal/models"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrDuplicateSlug   = errors.New("content slug already exists")
)

const contentColumns = `id, slug, title, description, category, subject_id, tags, blocks, sort_order, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanContent(row scanner) (*models.Content, error) {
	c := &models.Content{}
	var idStr, category, subjectID, tags, blocks string
	if err := row.Scan(&idStr, &c.Slug, &c.Title, &c.Description, &category, &subjectID, &tags, &blocks, &c.Order, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	c.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid content ID in database: %w", err)
	}
	if subjectID != "" {
		if c.SubjectID, err = uuid.Parse(subjectID); err != nil {
			return nil, fmt.Errorf("invalid subject ID of %q: %w", c.Slug, err)
		}
	}
	c.Category = models.Category(category)
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %q: %w", c.Slug, err)
	}
	if err := json.Unmarshal([]byte(blocks), &c.Blocks); err != nil {
		return nil, fmt.Errorf("decode blocks of %q: %w", c.Slug, err)
	}
	return c, nil
}

func encodeContent(c *models.Content) (tags, blocks string, err error) {
	t := c.Tags
	if t == nil {
		t = []string{}
	}
	tb, err := json.Marshal(t)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	b := c.Blocks
	if b == nil {
		b = []models.Block{}
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return "", "", fmt.Errorf("encode blocks: %w", err)
	}
	return string(tb), string(bb), nil
}

func subjectRef(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func CreateContent(ctx context.Context, db *sql.DB, c *models.Content) error {
	if _, err := GetContentBySlug(ctx, db, c.Slug); err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicateSlug, c.Slug)
	} else if !errors.Is(err, ErrContentNotFound) {
		return err
	}

	tags, blocks, err := encodeContent(c)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO contents (`+contentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Slug, c.Title, c.Description, string(c.Category), subjectRef(c.SubjectID), tags, blocks, c.Order, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

// UpdateContent rewrites a content unit by id. A slug change carries the
// stored notes along with it.
func UpdateContent(ctx context.Context, db *sql.DB, c *models.Content) error {
	tags, blocks, err := encodeContent(c)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var oldSlug string
	err = tx.QueryRowContext(ctx, `SELECT slug FROM contents WHERE id = ?`, c.ID.String()).Scan(&oldSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrContentNotFound
	}
	if err != nil {
		return err
	}

	c.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE contents SET slug = ?, title = ?, description = ?, category = ?, subject_id = ?, tags = ?, blocks = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		c.Slug, c.Title, c.Description, string(c.Category), subjectRef(c.SubjectID), tags, blocks, c.Order, c.UpdatedAt, c.ID.String(),
	); err != nil {
		return err
	}
	if oldSlug != c.Slug {
		if _, err := tx.ExecContext(ctx, `UPDATE notes SET content_id = ? WHERE content_id = ?`, c.Slug, oldSlug); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetContent looks a content unit up by slug, falling back to its UUID.
func GetContent(ctx context.Context, db *sql.DB, id string) (*models.Content, error) {
	c, err := GetContentBySlug(ctx, db, id)
	if err == nil || !errors.Is(err, ErrContentNotFound) {
		return c, err
	}
	if _, perr := uuid.Parse(id); perr != nil {
		return nil, err
	}
	c, err = scanContent(db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	return c, err
}

func GetContentBySlug(ctx context.Context, db *sql.DB, slug string) (*models.Content, error) {
	c, err := scanContent(db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE slug = ?`, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContentNotFound
	}
	return c, err
}

// ContentFilter narrows ListContents. Zero fields match everything.
type ContentFilter struct {
	Category  models.Category
	SubjectID uuid.UUID
}

// ListContents returns content units in display order.
func ListContents(ctx context.Context, db *sql.DB, f ContentFilter) ([]*models.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM contents`
	var where []string
	var args []any
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(f.Category))
	}
	if f.SubjectID != uuid.Nil {
		where = append(where, "subject_id = ?")
		args = append(args, f.SubjectID.String())
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sort_order, created_at"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteContent removes a content unit and every note stored against it.
func DeleteContent(ctx context.Context, db *sql.DB, slug string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM contents WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrContentNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE content_id = ?`, slug); err != nil {
		return err
	}
	return tx.Commit()
}

func SetContentOrder(ctx context.Context, db *sql.DB, slug string, order int) error {
	result, err := db.ExecContext(ctx,
		`UPDATE contents SET sort_order = ?, updated_at = ? WHERE slug = ?`,
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
		return ErrContentNotFound
	}
	return nil
}

// Provider adapts the content table to the selection controller.
type Provider struct {
	DB *sql.DB
}

func (p Provider) GetContent(ctx context.Context, id string) (*models.Content, error) {
	return GetContent(ctx, p.DB, id)
}
