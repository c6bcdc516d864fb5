// ABOUTME: Tests for anchor resolution and context capture.
// ABOUTME: Covers first-occurrence tie-breaks, failures, and rune-safe windows.

package anchor

import (
	"errors"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	flat := "The quick brown fox jumps"

	span, err := Resolve(flat, Anchor{Text: "quick", Before: "The ", After: " brown"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if span != (Span{Start: 4, End: 9}) {
		t.Errorf("expected [4,9), got %+v", span)
	}
	if got := span.Slice(flat); got != "quick" {
		t.Errorf("expected span text %q, got %q", "quick", got)
	}
}

func TestResolveFirstOccurrenceWins(t *testing.T) {
	flat := "...The quick brown fox...The quick brown fox..."
	a := Anchor{Text: "quick", Before: "The ", After: " brown"}

	first, err := Resolve(flat, a)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	second, err := Resolve(flat, a)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	want := strings.Index(flat, "quick")
	if first.Start != want || second.Start != want {
		t.Errorf("expected both to resolve to %d, got %d and %d", want, first.Start, second.Start)
	}
}

func TestResolveContextDisambiguates(t *testing.T) {
	flat := "a fox ran. the fox slept."

	span, err := Resolve(flat, Anchor{Text: "fox", Before: "the ", After: " slept"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if span.Start != strings.LastIndex(flat, "fox") {
		t.Errorf("expected second fox, got start %d", span.Start)
	}
}

func TestResolveNotFound(t *testing.T) {
	tests := []struct {
		name string
		a    Anchor
	}{
		{"text missing", Anchor{Text: "cat"}},
		{"context changed", Anchor{Text: "fox", Before: "red "}},
		{"after context changed", Anchor{Text: "fox", After: " sleeps"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve("The quick brown fox jumps", tt.a)
			if !errors.Is(err, ErrAnchorNotFound) {
				t.Errorf("expected ErrAnchorNotFound, got %v", err)
			}
		})
	}
}

func TestResolveEmptyText(t *testing.T) {
	_, err := Resolve("anything", Anchor{Before: "any"})
	if !errors.Is(err, ErrEmptyAnchor) {
		t.Errorf("expected ErrEmptyAnchor, got %v", err)
	}
}

func TestResolveAllIsIndependent(t *testing.T) {
	flat := "alpha beta gamma"
	results := ResolveAll(flat, []Anchor{
		{Text: "alpha"},
		{Text: "delta"},
		{Text: "gamma", Before: "beta "},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Span.Slice(flat) != "alpha" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if !errors.Is(results[1].Err, ErrAnchorNotFound) {
		t.Errorf("expected second to fail, got %+v", results[1])
	}
	if results[2].Err != nil || results[2].Span.Slice(flat) != "gamma" {
		t.Errorf("unexpected third result: %+v", results[2])
	}
}

// Every captured anchor must resolve back to a span with the same text.
func TestCaptureRoundTrip(t *testing.T) {
	flat := "Bonds pay coupons. Bonds also mature. Stocks pay dividends; bonds don't."

	for _, sel := range Occurrences(flat, "pay") {
		for _, window := range []int{0, 3, DefaultContextWindow, 500} {
			a, err := Capture(flat, sel, window)
			if err != nil {
				t.Fatalf("capture failed: %v", err)
			}
			span, err := Resolve(flat, a)
			if err != nil {
				t.Fatalf("resolve failed for window %d: %v", window, err)
			}
			if span.Slice(flat) != "pay" {
				t.Errorf("expected %q, got %q", "pay", span.Slice(flat))
			}
		}
	}
}

func TestCaptureWindowBounds(t *testing.T) {
	flat := "0123456789abcdefghijklmnopqrstuvwxyz"
	sel := Span{Start: 25, End: 27}

	a, err := Capture(flat, sel, 20)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if a.Text != "pq" {
		t.Errorf("expected text %q, got %q", "pq", a.Text)
	}
	if a.Before != "56789abcdefghijklmno" {
		t.Errorf("unexpected before: %q", a.Before)
	}
	if a.After != "rstuvwxyz" {
		t.Errorf("expected after clipped at end, got %q", a.After)
	}
}

func TestCaptureCountsRunes(t *testing.T) {
	flat := "ééééé|x|ééééé"
	start := strings.Index(flat, "x")
	a, err := Capture(flat, Span{Start: start, End: start + 1}, 3)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if a.Before != "éé|" {
		t.Errorf("expected 3 runes before, got %q", a.Before)
	}
	if a.After != "|éé" {
		t.Errorf("expected 3 runes after, got %q", a.After)
	}
}

func TestCaptureInvalidSpan(t *testing.T) {
	flat := "héllo"
	tests := []Span{
		{Start: -1, End: 2},
		{Start: 2, End: 2},
		{Start: 3, End: 1},
		{Start: 0, End: 99},
		{Start: 2, End: 4}, // starts inside é
	}

	for _, sel := range tests {
		if _, err := Capture(flat, sel, 5); !errors.Is(err, ErrInvalidSpan) {
			t.Errorf("span %+v: expected ErrInvalidSpan, got %v", sel, err)
		}
	}
}

func TestOccurrences(t *testing.T) {
	got := Occurrences("aaaa", "aa")
	if len(got) != 3 {
		t.Fatalf("expected 3 overlapping occurrences, got %v", got)
	}
	if got[2] != (Span{Start: 2, End: 4}) {
		t.Errorf("unexpected last occurrence: %+v", got[2])
	}

	if Occurrences("abc", "") != nil {
		t.Error("expected no occurrences for empty text")
	}
}

func TestTrimSpan(t *testing.T) {
	flat := "one  two  three"

	got := TrimSpan(flat, Span{Start: 3, End: 10})
	if got.Slice(flat) != "two" {
		t.Errorf("expected %q, got %q", "two", got.Slice(flat))
	}

	blank := TrimSpan(flat, Span{Start: 3, End: 5})
	if !blank.Empty() {
		t.Errorf("expected empty span, got %+v", blank)
	}
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{Start: 0, End: 5}
	if !a.Overlaps(Span{Start: 4, End: 8}) {
		t.Error("expected overlap")
	}
	if a.Overlaps(Span{Start: 5, End: 8}) {
		t.Error("adjacent spans must not overlap")
	}
	if !a.Contains(0) || a.Contains(5) {
		t.Error("contains must respect half-open bounds")
	}
}
