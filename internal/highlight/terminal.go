// ABOUTME: Terminal rendering adapter for highlighted flattened text.
// ABOUTME: Colors highlight spans with fatih/color for CLI display.

package highlight

import (
	"sort"
	"strings"

	"github.com/fatih/color"
)

var (
	openColor     = color.New(color.FgBlack, color.BgYellow)
	resolvedColor = color.New(color.Faint, color.Underline)
	pendingColor  = color.New(color.FgBlack, color.BgCyan)
	labelColor    = color.New(color.Faint)
)

// Terminal renders flat with each mark colored. Where marks overlap the last
// one listed wins. Persisted marks are followed by a short note id label.
func Terminal(flat string, marks []Mark) string {
	var valid []Mark
	cuts := []int{0, len(flat)}
	for _, m := range marks {
		if m.Span.Empty() || m.Span.Start < 0 || m.Span.End > len(flat) {
			continue
		}
		valid = append(valid, m)
		cuts = append(cuts, m.Span.Start, m.Span.End)
	}
	sort.Ints(cuts)

	var sb strings.Builder
	for i := 0; i+1 < len(cuts); i++ {
		lo, hi := cuts[i], cuts[i+1]
		if lo == hi {
			continue
		}
		segment := flat[lo:hi]

		top := -1
		for j, m := range valid {
			if m.Span.Start <= lo && hi <= m.Span.End {
				top = j
			}
		}
		if top < 0 {
			sb.WriteString(segment)
		} else {
			sb.WriteString(colorFor(valid[top]).Sprint(segment))
		}

		for _, m := range valid {
			if m.Span.End == hi && !m.Pending && len(m.NoteID) >= 6 {
				sb.WriteString(labelColor.Sprint("[" + m.NoteID[:6] + "]"))
			}
		}
	}
	return sb.String()
}

func colorFor(m Mark) *color.Color {
	switch {
	case m.Pending:
		return pendingColor
	case m.Resolved:
		return resolvedColor
	default:
		return openColor
	}
}
