package beam

import (
	"errors"
	"testing"
)

type scored struct {
	id    int
	score float64
}

func newScoredSet(n int) *TopSet[scored] {
	return NewTopSet[scored](n, func(s scored) float64 { return s.score })
}

// TestTopSetKeepsHighest pushes more items than the capacity allows and
// verifies that exactly the best ones survive, in descending order.
func TestTopSetKeepsHighest(t *testing.T) {
	s := newScoredSet(3)
	for i, sc := range []float64{0.4, -1.2, 3.0, 0.9, 2.1, -0.5, 1.7} {
		if err := s.Push(scored{id: i, score: sc}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", s.Len())
	}

	got := s.Extract(true)
	want := []float64{3.0, 2.1, 1.7}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].score != want[i] {
			t.Fatalf("item %d: got score %v, want %v", i, got[i].score, want[i])
		}
	}
}

// TestTopSetUnderCapacity verifies that pushing fewer items than the
// capacity yields exactly those items.
func TestTopSetUnderCapacity(t *testing.T) {
	s := newScoredSet(5)
	_ = s.Push(scored{id: 0, score: 1})
	_ = s.Push(scored{id: 1, score: 2})

	got := s.Extract(false)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
}

// TestTopSetPushAfterExtract verifies that a drained set rejects pushes
// until Reset and accepts them again afterwards.
func TestTopSetPushAfterExtract(t *testing.T) {
	s := newScoredSet(2)
	_ = s.Push(scored{score: 1})
	_ = s.Extract(true)

	if err := s.Push(scored{score: 2}); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}

	s.Reset()
	if err := s.Push(scored{score: 2}); err != nil {
		t.Fatalf("push after reset: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 item after reset, got %d", s.Len())
	}
}

// TestTopSetEqualScoreReplaces verifies the full-set rule: a newcomer that
// does not score below the current minimum replaces it.
func TestTopSetEqualScoreReplaces(t *testing.T) {
	s := newScoredSet(1)
	_ = s.Push(scored{id: 1, score: 0.5})
	_ = s.Push(scored{id: 2, score: 0.5})

	got := s.Extract(false)
	if len(got) != 1 || got[0].id != 2 {
		t.Fatalf("expected the newer item to survive, got %+v", got)
	}
}

// TestTopSetLowerScoreDiscarded verifies that a strictly weaker newcomer is
// dropped when the set is full.
func TestTopSetLowerScoreDiscarded(t *testing.T) {
	s := newScoredSet(2)
	_ = s.Push(scored{id: 1, score: 2})
	_ = s.Push(scored{id: 2, score: 3})
	_ = s.Push(scored{id: 3, score: 1})

	got := s.Extract(true)
	if len(got) != 2 || got[0].id != 2 || got[1].id != 1 {
		t.Fatalf("unexpected survivors: %+v", got)
	}
}
