package store

import (
	"slices"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/guardrail"
)

// Snapshot is the read model handed to observers. It is a deep copy and may
// be retained and read freely.
type Snapshot struct {
	Nodes      []diagram.Node     `json:"nodes"`
	Edges      []diagram.Edge     `json:"edges"`
	Lanes      []diagram.Swimlane `json:"lanes"`
	UI         diagram.UIState    `json:"ui"`
	Guardrails []guardrail.Issue  `json:"guardrails"`
	Selection  diagram.Selection  `json:"selection"`

	// Change is the mutation that produced this snapshot. It is zero for
	// snapshots taken with [Store.Snapshot].
	Change Change `json:"change"`
}

// Content returns the undo-tracked part of the snapshot.
func (s Snapshot) Content() diagram.Content {
	return diagram.Content{Nodes: s.Nodes, Edges: s.Edges, Lanes: s.Lanes}.Clone()
}

// Node returns the node with id.
func (s Snapshot) Node(id string) (diagram.Node, bool) {
	i := slices.IndexFunc(s.Nodes, func(n diagram.Node) bool { return n.ID == id })
	if i < 0 {
		return diagram.Node{}, false
	}
	return s.Nodes[i], true
}

// Edge returns the edge with id.
func (s Snapshot) Edge(id string) (diagram.Edge, bool) {
	i := slices.IndexFunc(s.Edges, func(e diagram.Edge) bool { return e.ID == id })
	if i < 0 {
		return diagram.Edge{}, false
	}
	return s.Edges[i], true
}

// Lane returns the lane with id.
func (s Snapshot) Lane(id string) (diagram.Swimlane, bool) {
	i := slices.IndexFunc(s.Lanes, func(l diagram.Swimlane) bool { return l.ID == id })
	if i < 0 {
		return diagram.Swimlane{}, false
	}
	return s.Lanes[i], true
}

// Snapshot returns the current read model.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Guardrails returns the current guardrail issues.
func (s *Store) Guardrails() []guardrail.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.guardrails)
}

// Selection returns the tracked selection.
func (s *Store) Selection() diagram.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// UI returns the current display preferences.
func (s *Store) UI() diagram.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui
}

func (s *Store) snapshotLocked() Snapshot {
	c := s.content.Clone()
	issues := slices.Clone(s.guardrails)
	if issues == nil {
		issues = []guardrail.Issue{}
	}
	return Snapshot{
		Nodes:      c.Nodes,
		Edges:      c.Edges,
		Lanes:      c.Lanes,
		UI:         s.ui,
		Guardrails: issues,
		Selection:  s.selection,
	}
}
