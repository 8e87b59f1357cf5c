package store

import (
	"slices"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/schema"
)

// NodePatch is a partial update of node attributes. Nil fields are left
// untouched.
type NodePatch struct {
	DisplayName      *string `json:"displayName,omitempty"`
	Description      *string `json:"description,omitempty"`
	Jurisdiction     *string `json:"jurisdiction,omitempty"`
	Regulator        *string `json:"regulator,omitempty"`
	SettlementAccess *string `json:"settlementAccess,omitempty"`
}

func (p NodePatch) apply(a diagram.NodeAttributes) diagram.NodeAttributes {
	set(&a.DisplayName, p.DisplayName)
	set(&a.Description, p.Description)
	set(&a.Jurisdiction, p.Jurisdiction)
	set(&a.Regulator, p.Regulator)
	set(&a.SettlementAccess, p.SettlementAccess)
	return a
}

// EdgePatch is a partial update of edge attributes. Nil fields are left
// untouched.
type EdgePatch struct {
	Rail            *string `json:"rail,omitempty"`
	SettlementSpeed *string `json:"settlementSpeed,omitempty"`
	Direction       *string `json:"direction,omitempty"`
	LedgerOfRecord  *string `json:"ledgerOfRecord,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

func (p EdgePatch) apply(a diagram.EdgeAttributes) diagram.EdgeAttributes {
	set(&a.Rail, p.Rail)
	set(&a.SettlementSpeed, p.SettlementSpeed)
	set(&a.Direction, p.Direction)
	set(&a.LedgerOfRecord, p.LedgerOfRecord)
	set(&a.Notes, p.Notes)
	return a
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (s *Store) nodeIndex(id string) int {
	return slices.IndexFunc(s.content.Nodes, func(n diagram.Node) bool { return n.ID == id })
}

func (s *Store) edgeIndex(id string) int {
	return slices.IndexFunc(s.content.Edges, func(e diagram.Edge) bool { return e.ID == id })
}

// clearFlags drops every per-element selection flag.
func (s *Store) clearFlags() {
	for i := range s.content.Nodes {
		s.content.Nodes[i].Selected = false
	}
	for i := range s.content.Edges {
		s.content.Edges[i].Selected = false
	}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode appends a new node of kind at pos and selects it, clearing any
// edge selection. It returns the new node ID, or "" for an unknown kind.
func (s *Store) AddNode(kind schema.NodeKind, pos diagram.Position) string {
	var id string
	s.apply("addNode", ChangeGraph, func() bool {
		if _, ok := schema.ParseKind(kind.String()); !ok {
			return false
		}
		n := diagram.NewNode(kind, pos)
		n.Selected = true
		s.clearFlags()
		s.content.Nodes = append(s.content.Nodes, n)
		s.selection = diagram.Selection{NodeID: n.ID}
		id = n.ID
		return true
	})
	return id
}

// MoveNode sets the position of node id, as reported by the canvas.
func (s *Store) MoveNode(id string, pos diagram.Position) {
	s.apply("moveNode", ChangeGraph, func() bool {
		i := s.nodeIndex(id)
		if i < 0 || s.content.Nodes[i].Position == pos {
			return false
		}
		s.content.Nodes[i].Position = pos
		return true
	})
}

// UpdateNodeAttributes merges patch into the attributes of node id.
// Unknown ids are ignored.
func (s *Store) UpdateNodeAttributes(id string, patch NodePatch) {
	s.apply("updateNodeAttributes", ChangeGraph, func() bool {
		i := s.nodeIndex(id)
		if i < 0 {
			return false
		}
		s.content.Nodes[i].Attributes = patch.apply(s.content.Nodes[i].Attributes)
		return true
	})
}

// ResetNodeAttributes restores the factory attributes of node id, keeping
// its kind.
func (s *Store) ResetNodeAttributes(id string) {
	s.apply("resetNodeAttributes", ChangeGraph, func() bool {
		i := s.nodeIndex(id)
		if i < 0 {
			return false
		}
		s.content.Nodes[i].Attributes = diagram.DefaultNodeAttributes(s.content.Nodes[i].Kind)
		return true
	})
}

// =============================================================================
// Edges
// =============================================================================

// AddConnection appends a decorated edge from source to target and selects
// it, clearing any node selection. Self-loops and unknown endpoints are
// rejected silently; the second result reports whether an edge was added.
func (s *Store) AddConnection(source, target, sourceHandle, targetHandle string) (string, bool) {
	var id string
	s.apply("addConnection", ChangeGraph, func() bool {
		if source == target || s.nodeIndex(source) < 0 || s.nodeIndex(target) < 0 {
			return false
		}
		e := diagram.NewEdge(source, target, sourceHandle, targetHandle)
		e.Selected = true
		s.clearFlags()
		s.content.Edges = append(s.content.Edges, e)
		s.selection = diagram.Selection{EdgeID: e.ID}
		id = e.ID
		return true
	})
	return id, id != ""
}

// UpdateEdgeAttributes merges patch into the attributes of edge id and
// re-decorates it.
func (s *Store) UpdateEdgeAttributes(id string, patch EdgePatch) {
	s.apply("updateEdgeAttributes", ChangeGraph, func() bool {
		i := s.edgeIndex(id)
		if i < 0 {
			return false
		}
		e := s.content.Edges[i]
		e.Attributes = patch.apply(e.Attributes)
		s.content.Edges[i] = diagram.Decorate(e)
		return true
	})
}

// ResetEdgeAttributes restores the factory attributes of edge id and
// re-decorates it.
func (s *Store) ResetEdgeAttributes(id string) {
	s.apply("resetEdgeAttributes", ChangeGraph, func() bool {
		i := s.edgeIndex(id)
		if i < 0 {
			return false
		}
		e := s.content.Edges[i]
		e.Attributes = diagram.DefaultEdgeAttributes()
		s.content.Edges[i] = diagram.Decorate(e)
		return true
	})
}

// =============================================================================
// Selection-driven operations
// =============================================================================

// DeleteSelection removes every selected node and edge, plus any edge whose
// endpoint was a removed node. Selection is cleared.
func (s *Store) DeleteSelection() {
	s.apply("deleteSelection", ChangeGraph, func() bool {
		sel := s.effectiveSelection()
		if sel.empty() {
			return false
		}

		s.content.Nodes = slices.DeleteFunc(s.content.Nodes, func(n diagram.Node) bool {
			return sel.nodes[n.ID]
		})
		s.content.Edges = slices.DeleteFunc(s.content.Edges, func(e diagram.Edge) bool {
			return sel.edges[e.ID] || sel.nodes[e.Source] || sel.nodes[e.Target]
		})
		s.selection = diagram.Selection{}
		return true
	})
}

// DuplicateSelection clones every selected node (edges are not cloned) and
// deselects the originals. The clone becomes the tracked selection when
// exactly one node was duplicated; otherwise the tracked selection is
// cleared and the clones keep only their selection flags.
func (s *Store) DuplicateSelection() {
	s.apply("duplicateSelection", ChangeGraph, func() bool {
		sel := s.effectiveSelection()
		if len(sel.nodes) == 0 {
			return false
		}

		var clones []diagram.Node
		for _, n := range s.content.Nodes {
			if sel.nodes[n.ID] {
				clones = append(clones, diagram.CloneNode(n))
			}
		}
		s.clearFlags()
		s.content.Nodes = append(s.content.Nodes, clones...)

		s.selection = diagram.Selection{}
		if len(clones) == 1 {
			s.selection.NodeID = clones[0].ID
		}
		return true
	})
}
