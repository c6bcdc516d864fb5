// ABOUTME: Anchor resolution for highlight-to-note annotations.
// ABOUTME: Locates a text fragment in flattened text using surrounding context.

// Package anchor maps a note's (text, context before, context after) triple to
// a byte span in the flattened text of a content unit, and back.
//
// Resolution concatenates the context and the text into one pattern and takes
// the first occurrence. Two places with identical surrounding context cannot be
// told apart; both resolve to the earlier one.
package anchor

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultContextWindow is the number of runes captured on each side of a
// selection.
const DefaultContextWindow = 20

var (
	ErrAnchorNotFound = errors.New("anchor not found")
	ErrEmptyAnchor    = errors.New("anchor text is empty")
	ErrInvalidSpan    = errors.New("invalid span")
)

// Anchor identifies where a highlight belongs.
type Anchor struct {
	Text   string
	Before string
	After  string
}

func (a Anchor) pattern() string {
	return a.Before + a.Text + a.After
}

// Span is a half-open byte range [Start, End) into flattened text.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) Empty() bool { return s.End <= s.Start }

func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) Contains(off int) bool {
	return off >= s.Start && off < s.End
}

// Slice returns the text covered by s. It panics like a slice expression if s
// is out of range.
func (s Span) Slice(text string) string {
	return text[s.Start:s.End]
}

// Resolve finds the span of a.Text inside flat. The first occurrence of
// Before+Text+After wins.
func Resolve(flat string, a Anchor) (Span, error) {
	if a.Text == "" {
		return Span{}, ErrEmptyAnchor
	}

	idx := strings.Index(flat, a.pattern())
	if idx < 0 {
		return Span{}, ErrAnchorNotFound
	}

	start := idx + len(a.Before)
	return Span{Start: start, End: start + len(a.Text)}, nil
}

// Result is the outcome of resolving one anchor in a batch.
type Result struct {
	Span Span
	Err  error
}

// ResolveAll resolves each anchor independently. A failure for one anchor
// never affects another.
func ResolveAll(flat string, anchors []Anchor) []Result {
	results := make([]Result, len(anchors))
	for i, a := range anchors {
		span, err := Resolve(flat, a)
		results[i] = Result{Span: span, Err: err}
	}
	return results
}

// Capture builds an anchor for a live selection, taking up to window runes of
// context on each side.
func Capture(flat string, sel Span, window int) (Anchor, error) {
	if !validSpan(flat, sel) {
		return Anchor{}, ErrInvalidSpan
	}
	if window < 0 {
		window = 0
	}

	return Anchor{
		Text:   flat[sel.Start:sel.End],
		Before: lastRunes(flat[:sel.Start], window),
		After:  firstRunes(flat[sel.End:], window),
	}, nil
}

// Occurrences returns every span where text appears in flat, including
// overlapping ones, in order.
func Occurrences(flat, text string) []Span {
	if text == "" {
		return nil
	}

	var spans []Span
	offset := 0
	for offset <= len(flat) {
		idx := strings.Index(flat[offset:], text)
		if idx < 0 {
			break
		}
		start := offset + idx
		spans = append(spans, Span{Start: start, End: start + len(text)})

		_, width := utf8.DecodeRuneInString(flat[start:])
		offset = start + width
	}
	return spans
}

// TrimSpan shrinks sel so it neither starts nor ends with whitespace. The
// result is empty when the selection is all whitespace.
func TrimSpan(flat string, sel Span) Span {
	if !validSpan(flat, sel) {
		return Span{}
	}
	text := flat[sel.Start:sel.End]
	left := len(text) - len(strings.TrimLeftFunc(text, unicode.IsSpace))
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Span{Start: sel.Start, End: sel.Start}
	}
	return Span{Start: sel.Start + left, End: sel.Start + left + len(trimmed)}
}

func validSpan(flat string, s Span) bool {
	if s.Start < 0 || s.End > len(flat) || s.Start >= s.End {
		return false
	}
	if s.Start < len(flat) && !utf8.RuneStart(flat[s.Start]) {
		return false
	}
	if s.End < len(flat) && !utf8.RuneStart(flat[s.End]) {
		return false
	}
	return true
}

func lastRunes(s string, n int) string {
	i := len(s)
	for count := 0; count < n && i > 0; count++ {
		_, width := utf8.DecodeLastRuneInString(s[:i])
		i -= width
	}
	return s[i:]
}

func firstRunes(s string, n int) string {
	i := 0
	for count := 0; count < n && i < len(s); count++ {
		_, width := utf8.DecodeRuneInString(s[i:])
		i += width
	}
	return s[:i]
}
