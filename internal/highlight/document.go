// ABOUTME: Immutable HTML document model for highlight rendering.
// ABOUTME: Parses text blocks once and exposes their flattened text.

// Package highlight injects highlight markers into rich HTML content without
// touching the text or the surrounding markup. A Document is never modified
// after Parse; Apply returns a new one.
package highlight

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed content unit: one container per text block.
type Document struct {
	blocks []*html.Node
}

// Parse parses each HTML fragment as a separate block, in order.
func Parse(fragments ...string) (*Document, error) {
	doc := &Document{}
	for i, frag := range fragments {
		nodes, err := html.ParseFragment(strings.NewReader(frag), newContainer())
		if err != nil {
			return nil, fmt.Errorf("parse block %d: %w", i, err)
		}
		container := newContainer()
		for _, n := range nodes {
			container.AppendChild(n)
		}
		doc.blocks = append(doc.blocks, container)
	}
	return doc, nil
}

// Text returns the flattened text: every text node's data, in document order,
// with no separator between blocks.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, b := range d.blocks {
		walkText(b, func(n *html.Node) {
			sb.WriteString(n.Data)
		})
	}
	return sb.String()
}

// Blocks reports how many text blocks the document holds.
func (d *Document) Blocks() int {
	return len(d.blocks)
}

// HTML renders all blocks back to a single HTML string.
func (d *Document) HTML() (string, error) {
	frags, err := d.Fragments()
	if err != nil {
		return "", err
	}
	return strings.Join(frags, ""), nil
}

// Fragments renders each block separately.
func (d *Document) Fragments() ([]string, error) {
	out := make([]string, 0, len(d.blocks))
	for i, b := range d.blocks {
		var sb strings.Builder
		for c := b.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&sb, c); err != nil {
				return nil, fmt.Errorf("render block %d: %w", i, err)
			}
		}
		out = append(out, sb.String())
	}
	return out, nil
}

func (d *Document) clone() *Document {
	c := &Document{blocks: make([]*html.Node, len(d.blocks))}
	for i, b := range d.blocks {
		c.blocks[i] = cloneNode(b)
	}
	return c
}

func newContainer() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

// walkText visits text nodes in document order. Comments and doctypes do not
// contribute to the flattened text.
func walkText(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.TextNode {
		fn(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, fn)
	}
}
