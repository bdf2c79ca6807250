package suggest

import "testing"

func TestClosestSubsequence(t *testing.T) {
	got := Closest("cout", []string{"count", "clock", "total"})
	if got != "count" {
		t.Errorf("expected 'count', got %q", got)
	}
}

func TestClosestTransposition(t *testing.T) {
	got := Closest("conut", []string{"count", "clock"})
	if got != "count" {
		t.Errorf("expected 'count', got %q", got)
	}
}

func TestClosestCaseInsensitive(t *testing.T) {
	got := Closest("Counter", []string{"counter", "other"})
	if got != "counter" {
		t.Errorf("expected 'counter', got %q", got)
	}
}

func TestClosestNothingNear(t *testing.T) {
	if got := Closest("x", []string{"clock", "makeCounter"}); got != "" {
		t.Errorf("expected no suggestion, got %q", got)
	}
	if got := Closest("anything", nil); got != "" {
		t.Errorf("expected no suggestion for empty candidates, got %q", got)
	}
}

func TestClosestIgnoresExactMatch(t *testing.T) {
	if got := Closest("a", []string{"a"}); got != "" {
		t.Errorf("expected no suggestion, got %q", got)
	}
}

func TestClosestDeterministicTies(t *testing.T) {
	for i := 0; i < 10; i++ {
		if got := Closest("ab", []string{"abd", "abc"}); got != "abc" {
			t.Fatalf("expected alphabetical tie-break 'abc', got %q", got)
		}
	}
}

func TestHint(t *testing.T) {
	if got := Hint("prnt", []string{"print"}); got != "did you mean 'print'?" {
		t.Errorf("unexpected hint: %q", got)
	}
	if got := Hint("zzz", []string{"print"}); got != "" {
		t.Errorf("expected empty hint, got %q", got)
	}
}
