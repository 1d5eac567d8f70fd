// Package history implements the bounded undo log.
package history

import "errors"

// DefaultLimit is the number of undo steps kept.
const DefaultLimit = 20

// ErrEmptyHistory is returned by Pop when there is nothing to undo.
var ErrEmptyHistory = errors.New("history is empty")

// Stack is a bounded LIFO of snapshots. When full, Push evicts the oldest
// entry.
type Stack[S any] struct {
	entries []S
	limit   int
}

// New creates a Stack holding at most limit entries. A non-positive limit
// selects DefaultLimit.
func New[S any](limit int) *Stack[S] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack[S]{
		entries: make([]S, 0, limit),
		limit:   limit,
	}
}

// Push appends s, dropping the oldest entry when the limit is exceeded.
func (h *Stack[S]) Push(s S) {
	if len(h.entries) == h.limit {
		var zero S
		h.entries[0] = zero
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, s)
}

// Pop removes and returns the most recent entry.
func (h *Stack[S]) Pop() (S, error) {
	var zero S
	if len(h.entries) == 0 {
		return zero, ErrEmptyHistory
	}
	last := h.entries[len(h.entries)-1]
	h.entries[len(h.entries)-1] = zero
	h.entries = h.entries[:len(h.entries)-1]
	return last, nil
}

func (h *Stack[S]) Len() int   { return len(h.entries) }
func (h *Stack[S]) Limit() int { return h.limit }

// Reset drops every entry.
func (h *Stack[S]) Reset() {
	clear(h.entries)
	h.entries = h.entries[:0]
}
