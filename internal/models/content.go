// ABOUTME: Content unit model for lessons and posts made of ordered blocks.
// ABOUTME: Only text blocks carry annotatable HTML.

package models

import (
	"time"

	"github.com/google/uuid"
)

type BlockType string

const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
	BlockCode  BlockType = "code"
)

type Category string

const (
	CategoryFinance     Category = "finance"
	CategoryAIML        Category = "ai-ml"
	CategoryMathematics Category = "mathematics"
)

type Block struct {
	ID          string    `json:"id"`
	Type        BlockType `json:"type"`
	Text        string    `json:"text,omitempty"`
	Src         string    `json:"src,omitempty"`
	Alt         string    `json:"alt,omitempty"`
	Caption     string    `json:"caption,omitempty"`
	Code        string    `json:"code,omitempty"`
	Language    string    `json:"language,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
}

func NewTextBlock(html string) Block {
	return Block{ID: uuid.NewString(), Type: BlockText, Text: html}
}

// Content is one lesson or post. SubjectID is uuid.Nil for a unit outside
// any subject.
type Content struct {
	ID          uuid.UUID
	Slug        string
	Title       string
	Description string
	Category    Category
	SubjectID   uuid.UUID
	Tags        []string
	Blocks      []Block
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewContent(slug, title string, category Category, blocks []Block) *Content {
	now := time.Now()
	return &Content{
		ID:        uuid.New(),
		Slug:      slug,
		Title:     title,
		Category:  category,
		Blocks:    blocks,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TextHTML returns the HTML of every text block, in block order.
func (c *Content) TextHTML() []string {
	var out []string
	for _, b := range c.Blocks {
		if b.Type == BlockText {
			out = append(out, b.Text)
		}
	}
	return out
}

// ReplaceText swaps the text blocks for a single new one, keeping image and
// code blocks where they were. The new block takes the first text block's slot.
func (c *Content) ReplaceText(html string) {
	var blocks []Block
	placed := false
	for _, b := range c.Blocks {
		if b.Type != BlockText {
			blocks = append(blocks, b)
			continue
		}
		if !placed {
			blocks = append(blocks, NewTextBlock(html))
			placed = true
		}
	}
	if !placed {
		blocks = append([]Block{NewTextBlock(html)}, blocks...)
	}
	c.Blocks = blocks
	c.Touch()
}

func (c *Content) Touch() {
	c.UpdatedAt = time.Now()
}
