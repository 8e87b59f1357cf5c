package store

import (
	"github.com/matzehuels/flowlane/pkg/diagram"
)

// selectionSet is the effective selection of one operation: the union of
// the per-element Selected flags (set by marquee selection on the canvas)
// and the tracked single ids.
type selectionSet struct {
	nodes map[string]bool
	edges map[string]bool
}

func (ss selectionSet) empty() bool { return len(ss.nodes) == 0 && len(ss.edges) == 0 }

// effectiveSelection is computed once per operation. Callers hold the lock.
func (s *Store) effectiveSelection() selectionSet {
	ss := selectionSet{nodes: map[string]bool{}, edges: map[string]bool{}}
	for _, n := range s.content.Nodes {
		if n.Selected || n.ID == s.selection.NodeID {
			ss.nodes[n.ID] = true
		}
	}
	for _, e := range s.content.Edges {
		if e.Selected || e.ID == s.selection.EdgeID {
			ss.edges[e.ID] = true
		}
	}
	return ss
}

// SelectNode makes id the tracked node selection and clears the edge
// selection. Unknown ids are ignored.
func (s *Store) SelectNode(id string) {
	s.apply("selectNode", ChangeView, func() bool {
		if s.nodeIndex(id) < 0 {
			return false
		}
		s.clearFlags()
		s.content.Nodes[s.nodeIndex(id)].Selected = true
		s.selection = diagram.Selection{NodeID: id}
		return true
	})
}

// SelectEdge makes id the tracked edge selection and clears the node
// selection. Unknown ids are ignored.
func (s *Store) SelectEdge(id string) {
	s.apply("selectEdge", ChangeView, func() bool {
		if s.edgeIndex(id) < 0 {
			return false
		}
		s.clearFlags()
		s.content.Edges[s.edgeIndex(id)].Selected = true
		s.selection = diagram.Selection{EdgeID: id}
		return true
	})
}

// ClearSelection drops the tracked selection and every selection flag.
func (s *Store) ClearSelection() {
	s.apply("clearSelection", ChangeView, func() bool {
		s.clearFlags()
		s.selection = diagram.Selection{}
		return true
	})
}

// SetElementsSelected sets the per-element selection flags to exactly the
// given ids, as reported by a marquee selection. The tracked single ids are
// left alone; unknown ids are ignored.
func (s *Store) SetElementsSelected(nodeIDs, edgeIDs []string) {
	s.apply("setElementsSelected", ChangeView, func() bool {
		nodes := toSet(nodeIDs)
		edges := toSet(edgeIDs)
		for i := range s.content.Nodes {
			s.content.Nodes[i].Selected = nodes[s.content.Nodes[i].ID]
		}
		for i := range s.content.Edges {
			s.content.Edges[i].Selected = edges[s.content.Edges[i].ID]
		}
		return true
	})
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// =============================================================================
// UI preferences
// =============================================================================

// UIPatch is a partial update of display preferences. Nil fields are left
// untouched. Lane orientation goes through [Store.SetLaneOrientation].
type UIPatch struct {
	DarkMode          *bool   `json:"darkMode,omitempty"`
	Background        *string `json:"background,omitempty"`
	SnapToGrid        *bool   `json:"snapToGrid,omitempty"`
	ShowLanes         *bool   `json:"showLanes,omitempty"`
	ShowMinimap       *bool   `json:"showMinimap,omitempty"`
	IncludeLanes      *bool   `json:"includeLanes,omitempty"`
	IncludeBackground *bool   `json:"includeBackground,omitempty"`
	IncludeGuardrails *bool   `json:"includeGuardrails,omitempty"`
}

// UpdateUI merges patch into the display preferences. An unknown
// background is ignored.
func (s *Store) UpdateUI(patch UIPatch) {
	s.apply("updateUI", ChangeView, func() bool {
		ui := s.ui
		set(&ui.DarkMode, patch.DarkMode)
		if patch.Background != nil && diagram.ValidBackgrounds[*patch.Background] {
			ui.Background = *patch.Background
		}
		set(&ui.SnapToGrid, patch.SnapToGrid)
		set(&ui.ShowLanes, patch.ShowLanes)
		set(&ui.ShowMinimap, patch.ShowMinimap)
		set(&ui.Export.IncludeLanes, patch.IncludeLanes)
		set(&ui.Export.IncludeBackground, patch.IncludeBackground)
		set(&ui.Export.IncludeGuardrails, patch.IncludeGuardrails)
		if ui == s.ui {
			return false
		}
		s.ui = ui
		return true
	})
}

// SetLaneOrientation updates the orientation preference and mirrors it onto
// every lane.
func (s *Store) SetLaneOrientation(o diagram.Orientation) {
	s.apply("setLaneOrientation", ChangeView, func() bool {
		if !o.Valid() {
			return false
		}
		s.ui.LaneOrientation = o
		for i := range s.content.Lanes {
			s.content.Lanes[i].Orientation = o
		}
		return true
	})
}
