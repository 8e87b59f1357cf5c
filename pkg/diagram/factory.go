package diagram

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowlane/pkg/schema"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// FormatVersion is stamped on every exported document.
	FormatVersion = "1.0"

	// CloneOffset is how far a duplicate is shifted on both axes.
	CloneOffset = 42.0

	// MinLaneSize is the smallest lane thickness a resize can produce.
	MinLaneSize = 120.0

	// DefaultLaneSize is the thickness of new and default lanes.
	DefaultLaneSize = 220.0

	// CopySuffix is appended to the display name of a duplicate.
	CopySuffix = " Copy"
)

// DefaultNodeSize is the size of every new node.
var DefaultNodeSize = Size{Width: 180, Height: 72}

// DefaultEdgeStyle is the fixed decoration of every edge.
var DefaultEdgeStyle = EdgeStyle{
	Stroke:      "#475569",
	StrokeWidth: 2,
	MarkerEnd:   "arrowclosed",
}

var defaultLanes = []struct {
	id, label string
}{
	{"lane-customer", "Customer"},
	{"lane-program", "Program"},
	{"lane-bank", "Bank & Rails"},
}

// DefaultUI returns the factory display preferences.
func DefaultUI() UIState {
	return UIState{
		Background:      BackgroundDots,
		SnapToGrid:      true,
		ShowLanes:       true,
		ShowMinimap:     true,
		LaneOrientation: Horizontal,
		Export: ExportOptions{
			IncludeLanes:      true,
			IncludeBackground: true,
		},
	}
}

// NewID returns a fresh identifier with the given prefix, e.g. "node-3f2a…".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// =============================================================================
// Nodes
// =============================================================================

// DefaultNodeAttributes returns the attributes a fresh node of kind starts
// with: the kind name as display name and every optional field Unset.
func DefaultNodeAttributes(kind schema.NodeKind) NodeAttributes {
	return NodeAttributes{
		DisplayName:      kind.String(),
		Description:      schema.Unset,
		Jurisdiction:     schema.Unset,
		Regulator:        schema.Unset,
		SettlementAccess: schema.Unset,
	}
}

// NewNode creates a node of kind at pos with default size and attributes.
func NewNode(kind schema.NodeKind, pos Position) Node {
	return Node{
		ID:         NewID("node"),
		Kind:       kind,
		Position:   pos,
		Size:       DefaultNodeSize,
		Attributes: DefaultNodeAttributes(kind),
	}
}

// CloneNode returns a selected copy of n with a new ID, shifted by
// CloneOffset and with CopySuffix appended to its display name.
func CloneNode(n Node) Node {
	c := n
	c.ID = NewID("node")
	c.Position = Position{X: n.Position.X + CloneOffset, Y: n.Position.Y + CloneOffset}
	c.Attributes.DisplayName = n.Attributes.DisplayName + CopySuffix
	c.Selected = true
	return c
}

// =============================================================================
// Edges
// =============================================================================

// DefaultEdgeAttributes returns the attributes of a fresh edge. Every field,
// including rail, starts Unset.
func DefaultEdgeAttributes() EdgeAttributes {
	return EdgeAttributes{
		Rail:            schema.Unset,
		SettlementSpeed: schema.Unset,
		Direction:       schema.Unset,
		LedgerOfRecord:  schema.Unset,
		Notes:           schema.Unset,
	}
}

// NewEdge creates a decorated edge from source to target.
func NewEdge(source, target, sourceHandle, targetHandle string) Edge {
	return Decorate(Edge{
		ID:           NewID("edge"),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
		Attributes:   DefaultEdgeAttributes(),
	})
}

// Decorate recomputes the derived label and style of e from its attributes.
// It is pure and idempotent.
func Decorate(e Edge) Edge {
	e.Label = ""
	if e.Attributes.Defined() {
		e.Label = e.Attributes.Rail
	}
	e.Style = DefaultEdgeStyle
	return e
}

// =============================================================================
// Lanes
// =============================================================================

// DefaultLanes returns the three starting lanes, all visible, in order.
func DefaultLanes(o Orientation) []Swimlane {
	lanes := make([]Swimlane, len(defaultLanes))
	for i, l := range defaultLanes {
		lanes[i] = Swimlane{
			ID:          l.id,
			Label:       l.label,
			Order:       i,
			Size:        DefaultLaneSize,
			Visible:     true,
			Orientation: o,
		}
	}
	return lanes
}

// NewLane creates a visible lane at the given order position.
func NewLane(order int, o Orientation) Swimlane {
	return Swimlane{
		ID:          NewID("lane"),
		Label:       fmt.Sprintf("Lane %d", order+1),
		Order:       order,
		Size:        DefaultLaneSize,
		Visible:     true,
		Orientation: o,
	}
}

// NormalizeLaneOrder returns the lanes sorted by their current order with
// order reassigned to 0..N-1. Ties keep their relative position.
func NormalizeLaneOrder(lanes []Swimlane) []Swimlane {
	out := cloneSlice(lanes)
	slices.SortStableFunc(out, func(a, b Swimlane) int { return cmp.Compare(a.Order, b.Order) })
	for i := range out {
		out[i].Order = i
	}
	return out
}

// ClampLaneSize bounds a lane thickness below by MinLaneSize. Non-finite
// sizes (NaN, ±Inf) become MinLaneSize.
func ClampLaneSize(size float64) float64 {
	if math.IsNaN(size) || math.IsInf(size, 0) {
		return MinLaneSize
	}
	return max(size, MinLaneSize)
}

// =============================================================================
// Documents
// =============================================================================

// EmptyDocument returns a document with no nodes or edges, the default
// lanes and default UI, stamped with FormatVersion and now.
func EmptyDocument(now time.Time) Document {
	ui := DefaultUI()
	return Document{
		Version:   FormatVersion,
		Timestamp: Timestamp(now),
		Nodes:     []Node{},
		Edges:     []Edge{},
		Lanes:     DefaultLanes(ui.LaneOrientation),
		UI:        ui,
	}
}

// Timestamp formats t as an ISO-8601 UTC timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
