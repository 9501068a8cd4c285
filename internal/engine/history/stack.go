package history

import (
	"errors"
	"sync"
	"time"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultLimit is the number of past snapshots kept when no limit is given.
const DefaultLimit = 50

// EqualFunc reports whether two snapshots are the same state.
type EqualFunc[T any] func(a, b T) bool

// CloneFunc returns a deep copy of a snapshot.
type CloneFunc[T any] func(T) T

// Info describes one undo or redo step.
type Info struct {
	Label     string
	Timestamp time.Time
}

// entry wraps a snapshot with metadata about the step that left it.
type entry[T any] struct {
	state     T
	label     string
	timestamp time.Time
}

// History manages undo/redo state for snapshots of type T.
type History[T any] struct {
	mu sync.Mutex

	past    []entry[T]
	present T
	future  []entry[T]

	limit int
	equal EqualFunc[T]
	clone CloneFunc[T]
}

// New creates a history whose present is initial. A nil clone stores values
// as given; a nil equal never treats two commits as duplicates.
func New[T any](initial T, limit int, equal EqualFunc[T], clone CloneFunc[T]) *History[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if equal == nil {
		equal = func(T, T) bool { return false }
	}
	return &History[T]{
		present: clone(initial),
		limit:   limit,
		equal:   equal,
		clone:   clone,
	}
}

// Present returns a copy of the current state.
func (h *History[T]) Present() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clone(h.present)
}

// Commit makes next the present state. The old present moves onto the past
// and the future is cleared. If next equals the present nothing changes
// (the future included) and Commit returns false.
func (h *History[T]) Commit(next T, label string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.equal(h.present, next) {
		return false
	}

	h.past = append(h.past, entry[T]{
		state:     h.present,
		label:     label,
		timestamp: time.Now(),
	})
	h.present = h.clone(next)
	h.future = nil

	// Enforce limit
	if len(h.past) > h.limit {
		excess := len(h.past) - h.limit
		h.past = h.past[excess:]
	}
	return true
}

// Undo moves the present one step back and returns the new present.
func (h *History[T]) Undo() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.past) == 0 {
		var zero T
		return zero, ErrNothingToUndo
	}

	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, entry[T]{
		state:     h.present,
		label:     prev.label,
		timestamp: time.Now(),
	})
	h.present = prev.state
	return h.clone(h.present), nil
}

// Redo moves the present one step forward and returns the new present.
func (h *History[T]) Redo() (T, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.future) == 0 {
		var zero T
		return zero, ErrNothingToRedo
	}

	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, entry[T]{
		state:     h.present,
		label:     next.label,
		timestamp: time.Now(),
	})
	h.present = next.state
	return h.clone(h.present), nil
}

// CanUndo returns true if undo is available.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo returns true if redo is available.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History[T]) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past)
}

// RedoCount returns the number of redo steps available.
func (h *History[T]) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future)
}

// Clear drops the past and future, keeping the present.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.past = nil
	h.future = nil
}

// Reset replaces the present and drops the past and future.
func (h *History[T]) Reset(present T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.present = h.clone(present)
	h.past = nil
	h.future = nil
}

// PeekUndo returns info about the next undo step without applying it.
func (h *History[T]) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.past) == 0 {
		return Info{}, false
	}
	e := h.past[len(h.past)-1]
	return Info{Label: e.label, Timestamp: e.timestamp}, true
}

// PeekRedo returns info about the next redo step without applying it.
func (h *History[T]) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.future) == 0 {
		return Info{}, false
	}
	e := h.future[len(h.future)-1]
	return Info{Label: e.label, Timestamp: e.timestamp}, true
}

// UndoInfo lists the available undo steps, oldest first.
func (h *History[T]) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.past))
	for i, e := range h.past {
		result[i] = Info{Label: e.label, Timestamp: e.timestamp}
	}
	return result
}
