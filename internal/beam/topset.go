package beam

import (
	"container/heap"
	"sort"
)

// TopSet is a capacity-limited collection that retains the n highest-scored
// items pushed since the last Reset. It is backed by a min-heap, so pushing
// into a full set costs O(log n) instead of a re-sort.
//
// Extract drains the set and leaves it exhausted: further pushes fail with
// ErrExhausted until Reset is called.
type TopSet[T any] struct {
	h         minHeap[T]
	cap       int
	exhausted bool
}

// NewTopSet creates an empty set holding at most n items, ranked by score.
// It panics if n < 1.
func NewTopSet[T any](n int, score func(T) float64) *TopSet[T] {
	if n < 1 {
		panic("beam: top set capacity must be at least 1")
	}
	return &TopSet[T]{
		h:   minHeap[T]{score: score},
		cap: n,
	}
}

// Len returns the current element count.
func (s *TopSet[T]) Len() int { return len(s.h.items) }

// Push inserts item, evicting the current minimum when the set is full and
// the newcomer does not score below it.
func (s *TopSet[T]) Push(item T) error {
	if s.exhausted {
		return ErrExhausted
	}
	if len(s.h.items) < s.cap {
		heap.Push(&s.h, item)
		return nil
	}
	if s.h.score(item) >= s.h.score(s.h.items[0]) {
		s.h.items[0] = item
		heap.Fix(&s.h, 0)
	}
	return nil
}

// Extract moves all items out of the set, optionally sorted by descending
// score, and marks the set exhausted.
func (s *TopSet[T]) Extract(sorted bool) []T {
	items := s.h.items
	s.h.items = nil
	s.exhausted = true
	if sorted {
		sort.Slice(items, func(i, j int) bool {
			return s.h.score(items[i]) > s.h.score(items[j])
		})
	}
	return items
}

// Reset returns the set to the empty, usable state.
func (s *TopSet[T]) Reset() {
	s.h.items = nil
	s.exhausted = false
}

// minHeap orders items ascending by score so the weakest item sits at the
// root, ready for eviction.
type minHeap[T any] struct {
	items []T
	score func(T) float64
}

func (h *minHeap[T]) Len() int           { return len(h.items) }
func (h *minHeap[T]) Less(i, j int) bool { return h.score(h.items[i]) < h.score(h.items[j]) }
func (h *minHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *minHeap[T]) Push(x any) {
	h.items = append(h.items, x.(T))
}

func (h *minHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	var zero T
	old[n-1] = zero
	h.items = old[:n-1]
	return item
}
