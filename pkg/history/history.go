// Package history provides undo and redo over the document content of a
// [store.Store].
//
// Only [diagram.Content] (nodes, edges, lanes) is ever recorded. UI
// preferences live outside that sub-state, so they are never undone.
package history

import (
	"sync"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/store"
)

// DefaultDepth is the number of undo steps kept when no depth is given.
const DefaultDepth = 100

// History records content before each tracked store change.
type History struct {
	mu      sync.Mutex
	store   *store.Store
	depth   int
	past    []diagram.Content
	future  []diagram.Content
	current diagram.Content

	unsubscribe func()
}

// Option configures a History.
type Option func(*History)

// WithDepth bounds the undo stack. Values below 1 are ignored.
func WithDepth(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.depth = n
		}
	}
}

// Attach subscribes a new History to s. The current content becomes the
// baseline; nothing before it can be undone.
func Attach(s *store.Store, opts ...Option) *History {
	h := &History{store: s, depth: DefaultDepth}
	for _, opt := range opts {
		opt(h)
	}
	h.current = s.Content()
	h.unsubscribe = s.Subscribe(h.observe)
	return h
}

// Detach stops recording. The stacks are kept.
func (h *History) Detach() { h.unsubscribe() }

func (h *History) observe(snap store.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := snap.Content()
	if snap.Change.Kind.Tracked() {
		h.past = append(h.past, h.current)
		if len(h.past) > h.depth {
			h.past = h.past[len(h.past)-h.depth:]
		}
		h.future = nil
	}
	h.current = next
}

// Undo restores the content before the last tracked change. It reports
// whether there was anything to undo.
func (h *History) Undo() bool {
	h.mu.Lock()
	if len(h.past) == 0 {
		h.mu.Unlock()
		return false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, h.current)
	h.mu.Unlock()

	h.store.Restore(prev)
	return true
}

// Redo reapplies the last undone change. It reports whether there was
// anything to redo.
func (h *History) Redo() bool {
	h.mu.Lock()
	if len(h.future) == 0 {
		h.mu.Unlock()
		return false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, h.current)
	h.mu.Unlock()

	h.store.Restore(next)
	return true
}

// CanUndo reports whether Undo would change anything.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo reports whether Redo would change anything.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// Depth returns the number of recorded undo steps.
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past)
}
