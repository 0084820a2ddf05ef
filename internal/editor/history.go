package editor

import "blockpad/internal/domain"

// DefaultMaxHistory bounds the undo stack; the oldest snapshot is
// evicted once the bound is reached.
const DefaultMaxHistory = 50

// History is a bounded snapshot stack with a cursor. It is a plain
// data structure: the owning Session serializes access and handles
// debouncing.
type History struct {
	max     int
	entries []domain.Document
	current int
}

// NewHistory creates a history seeded with the initial document state,
// which occupies the bottom of the stack and is never evicted by
// truncation alone.
func NewHistory(max int, initial domain.Document) *History {
	if max < 2 {
		max = 2
	}
	return &History{
		max:     max,
		entries: []domain.Document{domain.CloneDocument(initial)},
	}
}

// Push records a new snapshot. Any redo tail beyond the cursor is
// discarded, and the oldest entry is evicted once max is exceeded.
func (h *History) Push(doc domain.Document) {
	h.entries = append(h.entries[:h.current+1], domain.CloneDocument(doc))
	h.current = len(h.entries) - 1
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
		h.current--
	}
}

func (h *History) CanUndo() bool { return h.current > 0 }
func (h *History) CanRedo() bool { return h.current < len(h.entries)-1 }

// Undo steps the cursor back and returns a copy of that snapshot.
func (h *History) Undo() (domain.Document, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.current--
	return domain.CloneDocument(h.entries[h.current]), true
}

// Redo steps the cursor forward and returns a copy of that snapshot.
func (h *History) Redo() (domain.Document, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.current++
	return domain.CloneDocument(h.entries[h.current]), true
}

// Len reports how many snapshots are held.
func (h *History) Len() int { return len(h.entries) }
