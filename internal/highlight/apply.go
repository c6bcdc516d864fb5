// ABOUTME: Applies highlight marks to a Document by splitting text nodes.
// ABOUTME: Produces a new Document whose flattened text is unchanged.

package highlight

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/harper/marginalia/internal/anchor"
)

const (
	AttrNoteID  = "data-note-id"
	AttrPending = "data-pending"
)

// Mark is one highlight to inject, addressed by a span of flattened text.
type Mark struct {
	Span     anchor.Span
	Class    string
	NoteID   string
	Resolved bool
	Pending  bool
}

// Styles holds the CSS classes used for the three kinds of highlight.
type Styles struct {
	Open     string `yaml:"open"`
	Resolved string `yaml:"resolved"`
	Pending  string `yaml:"pending"`
}

func DefaultStyles() Styles {
	return Styles{
		Open:     "note-highlight",
		Resolved: "note-highlight note-resolved",
		Pending:  "note-pending",
	}
}

// For returns the class for a persisted note.
func (s Styles) For(resolved bool) string {
	if resolved {
		return s.Resolved
	}
	return s.Open
}

// rawText elements hold text the parser does not treat as markup, so a
// wrapper element cannot be placed inside them.
var rawText = map[atom.Atom]bool{
	atom.Script:    true,
	atom.Style:     true,
	atom.Textarea:  true,
	atom.Title:     true,
	atom.Xmp:       true,
	atom.Iframe:    true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Noscript:  true,
	atom.Plaintext: true,
}

// tableStructure elements only admit table content, so an inline wrapper there
// would be moved out of the table when the HTML is parsed again. Text directly
// inside them is inter-row whitespace.
var tableStructure = map[atom.Atom]bool{
	atom.Table:    true,
	atom.Tbody:    true,
	atom.Thead:    true,
	atom.Tfoot:    true,
	atom.Tr:       true,
	atom.Colgroup: true,
}

// Apply returns a copy of d with every mark wrapped around exactly the text it
// covers. Marks are applied in order; when two overlap, the later one nests
// inside the earlier wrapper. Empty or out-of-range spans are skipped.
func (d *Document) Apply(marks []Mark) *Document {
	out := d.clone()
	total := len(out.Text())
	for _, m := range marks {
		if m.Span.Empty() || m.Span.Start < 0 || m.Span.End > total {
			continue
		}
		out.applyOne(m)
	}
	return out
}

type textRef struct {
	node  *html.Node
	start int
}

func (d *Document) applyOne(m Mark) {
	var hits []textRef
	pos := 0
	for _, b := range d.blocks {
		walkText(b, func(n *html.Node) {
			start := pos
			pos += len(n.Data)
			if start < m.Span.End && m.Span.Start < pos {
				hits = append(hits, textRef{node: n, start: start})
			}
		})
	}

	for _, h := range hits {
		if h.node.Parent == nil || !wrappable(h.node.Parent) {
			continue
		}
		lo := max(m.Span.Start-h.start, 0)
		hi := min(m.Span.End-h.start, len(h.node.Data))
		wrap(h.node, lo, hi, m)
	}
}

func wrappable(parent *html.Node) bool {
	return !rawText[parent.DataAtom] && !tableStructure[parent.DataAtom]
}

// wrap replaces text node t with before / <span>mid</span> / after.
func wrap(t *html.Node, lo, hi int, m Mark) {
	parent := t.Parent
	data := t.Data

	if lo > 0 {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[:lo]}, t)
	}

	marker := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr:     markAttrs(m),
	}
	marker.AppendChild(&html.Node{Type: html.TextNode, Data: data[lo:hi]})
	parent.InsertBefore(marker, t)

	if hi < len(data) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[hi:]}, t)
	}
	parent.RemoveChild(t)
}

func markAttrs(m Mark) []html.Attribute {
	var attrs []html.Attribute
	if m.Class != "" {
		attrs = append(attrs, html.Attribute{Key: "class", Val: m.Class})
	}
	if m.Pending {
		attrs = append(attrs, html.Attribute{Key: AttrPending, Val: "true"})
	} else if m.NoteID != "" {
		attrs = append(attrs, html.Attribute{Key: AttrNoteID, Val: m.NoteID})
	}
	return attrs
}

// NoteIDs returns the note ids of every marker in the document, in document
// order, one entry per wrapper.
func (d *Document) NoteIDs() []string {
	var ids []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key == AttrNoteID {
					ids = append(ids, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for _, b := range d.blocks {
		visit(b)
	}
	return ids
}
