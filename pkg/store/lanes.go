package store

import (
	"slices"

	"github.com/matzehuels/flowlane/pkg/diagram"
)

func (s *Store) laneIndex(id string) int {
	return slices.IndexFunc(s.content.Lanes, func(l diagram.Swimlane) bool { return l.ID == id })
}

// AddLane appends a visible lane with the next order index and returns its id.
func (s *Store) AddLane() string {
	var id string
	s.apply("addLane", ChangeLanes, func() bool {
		l := diagram.NewLane(len(s.content.Lanes), s.ui.LaneOrientation)
		s.content.Lanes = diagram.NormalizeLaneOrder(append(s.content.Lanes, l))
		id = l.ID
		return true
	})
	return id
}

// RemoveLane deletes lane id and renormalizes the remaining order.
func (s *Store) RemoveLane(id string) {
	s.apply("removeLane", ChangeLanes, func() bool {
		i := s.laneIndex(id)
		if i < 0 {
			return false
		}
		s.content.Lanes = diagram.NormalizeLaneOrder(slices.Delete(s.content.Lanes, i, i+1))
		return true
	})
}

// RenameLane sets the label of lane id.
func (s *Store) RenameLane(id, label string) {
	s.patchLane("renameLane", id, func(l *diagram.Swimlane) bool {
		if l.Label == label {
			return false
		}
		l.Label = label
		return true
	})
}

// SetLaneVisible shows or hides lane id.
func (s *Store) SetLaneVisible(id string, visible bool) {
	s.patchLane("setLaneVisible", id, func(l *diagram.Swimlane) bool {
		if l.Visible == visible {
			return false
		}
		l.Visible = visible
		return true
	})
}

// ResizeLane sets the thickness of lane id, clamped to
// [diagram.MinLaneSize].
func (s *Store) ResizeLane(id string, size float64) {
	s.patchLane("resizeLane", id, func(l *diagram.Swimlane) bool {
		size = diagram.ClampLaneSize(size)
		if l.Size == size {
			return false
		}
		l.Size = size
		return true
	})
}

func (s *Store) patchLane(op, id string, fn func(*diagram.Swimlane) bool) {
	s.apply(op, ChangeLanes, func() bool {
		i := s.laneIndex(id)
		if i < 0 {
			return false
		}
		return fn(&s.content.Lanes[i])
	})
}

// ReorderLanes orders lanes as listed by ids. Unknown and repeated ids are
// dropped; lanes missing from ids keep their relative order after the
// listed ones. Order is renormalized to 0..N-1.
func (s *Store) ReorderLanes(ids []string) {
	s.apply("reorderLanes", ChangeLanes, func() bool {
		current := diagram.NormalizeLaneOrder(s.content.Lanes)
		seen := make(map[string]bool, len(ids))
		next := make([]diagram.Swimlane, 0, len(current))
		for _, id := range ids {
			i := slices.IndexFunc(current, func(l diagram.Swimlane) bool { return l.ID == id })
			if i < 0 || seen[id] {
				continue
			}
			seen[id] = true
			next = append(next, current[i])
		}
		for _, l := range current {
			if !seen[l.ID] {
				next = append(next, l)
			}
		}
		for i := range next {
			next[i].Order = i
		}
		if slices.Equal(next, current) {
			return false
		}
		s.content.Lanes = next
		return true
	})
}
