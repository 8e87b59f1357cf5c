package store

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/guardrail"
	"github.com/matzehuels/flowlane/pkg/observability"
)

// ChangeKind classifies what a mutation touched.
type ChangeKind int

const (
	// ChangeGraph is a node or edge mutation; guardrails were recomputed.
	ChangeGraph ChangeKind = iota
	// ChangeLanes is a swimlane mutation.
	ChangeLanes
	// ChangeView is a selection or UI preference change. Content is untouched
	// apart from selection flags.
	ChangeView
	// ChangeDocument replaced the whole document (reset or hydrate).
	ChangeDocument
	// ChangeRestore replaced content from history.
	ChangeRestore
)

// String returns the name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeGraph:
		return "graph"
	case ChangeLanes:
		return "lanes"
	case ChangeView:
		return "view"
	case ChangeDocument:
		return "document"
	case ChangeRestore:
		return "restore"
	}
	return "unknown"
}

// Tracked reports whether a change should be recorded in undo history.
func (k ChangeKind) Tracked() bool {
	return k == ChangeGraph || k == ChangeLanes || k == ChangeDocument
}

// Change describes the mutation that produced a snapshot.
type Change struct {
	Op   string     `json:"op"`
	Kind ChangeKind `json:"kind"`
}

// Store is the single source of truth for one diagram editing session.
//
// The zero value is not usable; create stores with [New]. A Store is safe for
// concurrent use, but every operation runs to completion before observers
// are notified, so observers never see a partial mutation.
type Store struct {
	mu sync.Mutex

	// content is the undo-tracked sub-state.
	content diagram.Content

	// view is never tracked by history.
	ui         diagram.UIState
	selection  diagram.Selection
	guardrails []guardrail.Issue

	subs    []subscriber
	nextSub int

	now    func() time.Time
	logger *log.Logger
	policy guardrail.Policy
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to stamp documents.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger mutations are reported to at debug level.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPolicy sets the guardrail policy.
func WithPolicy(p guardrail.Policy) Option {
	return func(s *Store) { s.policy = p }
}

// New creates a store holding an empty document.
func New(opts ...Option) *Store {
	s := &Store{
		now:    time.Now,
		logger: log.Default(),
		policy: guardrail.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.loadDocument(diagram.EmptyDocument(s.now()))
	return s
}

// Subscribe registers fn to receive a snapshot after every mutation and
// returns a function that removes the subscription. Observers run on the
// mutating goroutine, after the store lock is released, in subscription
// order.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// apply runs fn under the lock. fn reports whether it changed anything;
// unchanged operations are silent. Graph and document changes re-derive the
// guardrail list before observers are notified.
func (s *Store) apply(op string, kind ChangeKind, fn func() bool) {
	start := time.Now()

	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	if kind != ChangeView && kind != ChangeLanes {
		s.evaluate()
	}
	snap := s.snapshotLocked()
	snap.Change = Change{Op: op, Kind: kind}
	fns := make([]func(Snapshot), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()

	observability.Store().OnMutation(op, time.Since(start))
	s.logger.Debug("store mutation",
		"op", op,
		"kind", kind,
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
		"issues", len(snap.Guardrails))

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) evaluate() {
	s.guardrails = guardrail.EvaluateWith(s.policy, s.content.Nodes, s.content.Edges)
	observability.Store().OnGuardrails(guardrail.Counts(s.guardrails))
}

// loadDocument replaces all state from doc. Callers hold the lock, except New.
func (s *Store) loadDocument(doc diagram.Document) {
	s.ui = doc.UI
	if !s.ui.LaneOrientation.Valid() {
		s.ui.LaneOrientation = laneOrientation(doc.Lanes)
	}
	s.setContent(doc.Content())
	s.selection = diagram.Selection{}
	s.evaluate()
}

// setContent installs c, re-decorating every edge, dropping edges that
// violate graph invariants, and renormalizing lanes under the current
// orientation.
func (s *Store) setContent(c diagram.Content) {
	c = c.Clone()
	present := make(map[string]bool, len(c.Nodes))
	for i := range c.Nodes {
		c.Nodes[i].Selected = false
		present[c.Nodes[i].ID] = true
	}

	edges := make([]diagram.Edge, 0, len(c.Edges))
	for _, e := range c.Edges {
		if e.Source == e.Target || !present[e.Source] || !present[e.Target] {
			s.logger.Debug("dropping invalid edge", "id", e.ID, "source", e.Source, "target", e.Target)
			continue
		}
		e.Selected = false
		edges = append(edges, diagram.Decorate(e))
	}
	c.Edges = edges

	c.Lanes = diagram.NormalizeLaneOrder(c.Lanes)
	for i := range c.Lanes {
		c.Lanes[i].Orientation = s.ui.LaneOrientation
		c.Lanes[i].Size = diagram.ClampLaneSize(c.Lanes[i].Size)
	}
	s.content = c
}

func laneOrientation(lanes []diagram.Swimlane) diagram.Orientation {
	for _, l := range lanes {
		if l.Orientation.Valid() {
			return l.Orientation
		}
	}
	return diagram.Horizontal
}

// =============================================================================
// Document lifecycle
// =============================================================================

// ResetDocument replaces everything with a fresh empty document.
func (s *Store) ResetDocument() {
	s.apply("resetDocument", ChangeDocument, func() bool {
		s.loadDocument(diagram.EmptyDocument(s.now()))
		return true
	})
}

// Hydrate replaces nodes, edges, lanes and UI with doc. Every edge is
// re-decorated, lanes are renormalized and selection is cleared. Edges that
// are self-loops or reference missing nodes are dropped.
//
// Hydrate assumes doc is structurally valid; payload validation belongs to
// the import layer (see package io).
func (s *Store) Hydrate(doc diagram.Document) {
	s.apply("hydrate", ChangeDocument, func() bool {
		s.loadDocument(doc)
		return true
	})
}

// ExportSnapshot returns a deep copy of the document stamped with the
// current format version and time.
func (s *Store) ExportSnapshot() diagram.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.content.Clone()
	return diagram.Document{
		Version:   diagram.FormatVersion,
		Timestamp: diagram.Timestamp(s.now()),
		Nodes:     c.Nodes,
		Edges:     c.Edges,
		Lanes:     c.Lanes,
		UI:        s.ui,
	}
}

// Content returns a deep copy of the undo-tracked sub-state.
func (s *Store) Content() diagram.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.Clone()
}

// Restore replaces the undo-tracked sub-state with c, keeping UI
// preferences. Selection is cleared and guardrails recomputed.
func (s *Store) Restore(c diagram.Content) {
	s.apply("restore", ChangeRestore, func() bool {
		s.setContent(c)
		s.selection = diagram.Selection{}
		return true
	})
}
