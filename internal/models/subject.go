// ABOUTME: Subject model grouping content units within a category.
// ABOUTME: Categories hold ordered subjects, subjects hold ordered lessons.

package models

import (
	"time"

	"github.com/google/uuid"
)

type Subject struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Description string
	Category    Category
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewSubject(slug, title string, category Category) *Subject {
	now := time.Now()
	return &Subject{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     title,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
