package diagram

import (
	"slices"

	"github.com/matzehuels/flowlane/pkg/schema"
)

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in canvas units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeAttributes holds the user-editable fields of a node.
// Optional fields start as [schema.Unset].
type NodeAttributes struct {
	DisplayName      string `json:"displayName"`
	Description      string `json:"description"`
	Jurisdiction     string `json:"jurisdiction"`
	Regulator        string `json:"regulator"`
	SettlementAccess string `json:"settlementAccess"`
}

// Node is a financial entity placed on the canvas.
// ID and Kind never change after creation.
type Node struct {
	ID         string          `json:"id"`
	Kind       schema.NodeKind `json:"kind"`
	Position   Position        `json:"position"`
	Size       Size            `json:"size"`
	Attributes NodeAttributes  `json:"attributes"`
	Selected   bool            `json:"selected,omitempty"`
}

// EdgeAttributes holds the user-editable fields of a money movement.
type EdgeAttributes struct {
	Rail            string `json:"rail"`
	SettlementSpeed string `json:"settlementSpeed"`
	Direction       string `json:"direction"`
	LedgerOfRecord  string `json:"ledgerOfRecord"`
	Notes           string `json:"notes"`
}

// Defined reports whether the movement has a rail, which is what the
// guardrails treat as a "defined" movement.
func (a EdgeAttributes) Defined() bool { return !schema.IsBlank(a.Rail) }

// EdgeStyle is the visual decoration derived for an edge.
type EdgeStyle struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	MarkerEnd   string  `json:"markerEnd"`
	Animated    bool    `json:"animated"`
}

// Edge is a directed money movement between two nodes.
//
// Label and Style are derived from Attributes by [Decorate]; callers never
// set them directly.
type Edge struct {
	ID           string         `json:"id"`
	Source       string         `json:"source"`
	Target       string         `json:"target"`
	SourceHandle string         `json:"sourceHandle,omitempty"`
	TargetHandle string         `json:"targetHandle,omitempty"`
	Attributes   EdgeAttributes `json:"attributes"`
	Label        string         `json:"label"`
	Style        EdgeStyle      `json:"style"`
	Selected     bool           `json:"selected,omitempty"`
}

// Orientation is the axis lanes run along. Horizontal lanes stack vertically.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Valid reports whether o is a known orientation.
func (o Orientation) Valid() bool { return o == Horizontal || o == Vertical }

// Swimlane is a visual band partitioning the canvas.
// Order values across a document always form 0..N-1.
type Swimlane struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Order       int         `json:"order"`
	Size        float64     `json:"size"`
	Visible     bool        `json:"visible"`
	Orientation Orientation `json:"orientation"`
}

// Background styles for the canvas.
const (
	BackgroundDots  = "dots"
	BackgroundLines = "lines"
	BackgroundCross = "cross"
	BackgroundNone  = "none"
)

// ValidBackgrounds is the set of supported canvas backgrounds.
var ValidBackgrounds = map[string]bool{
	BackgroundDots:  true,
	BackgroundLines: true,
	BackgroundCross: true,
	BackgroundNone:  true,
}

// ExportOptions selects what file export includes.
type ExportOptions struct {
	IncludeLanes      bool `json:"includeLanes"`
	IncludeBackground bool `json:"includeBackground"`
	IncludeGuardrails bool `json:"includeGuardrails"`
}

// UIState is view configuration. It travels with a document but is never
// part of undo history.
type UIState struct {
	DarkMode        bool          `json:"darkMode"`
	Background      string        `json:"background"`
	SnapToGrid      bool          `json:"snapToGrid"`
	ShowLanes       bool          `json:"showLanes"`
	ShowMinimap     bool          `json:"showMinimap"`
	LaneOrientation Orientation   `json:"laneOrientation"`
	Export          ExportOptions `json:"export"`
}

// Selection is the single tracked node and edge selection.
// An empty string means nothing is selected.
type Selection struct {
	NodeID string `json:"nodeId,omitempty"`
	EdgeID string `json:"edgeId,omitempty"`
}

// Content is the document state tracked by undo history.
type Content struct {
	Nodes []Node     `json:"nodes"`
	Edges []Edge     `json:"edges"`
	Lanes []Swimlane `json:"lanes"`
}

// Clone returns a deep copy of c.
func (c Content) Clone() Content {
	return Content{
		Nodes: cloneSlice(c.Nodes),
		Edges: cloneSlice(c.Edges),
		Lanes: cloneSlice(c.Lanes),
	}
}

// Document is the import/export payload.
type Document struct {
	Version   string     `json:"version"`
	Timestamp string     `json:"timestamp"`
	Nodes     []Node     `json:"nodes"`
	Edges     []Edge     `json:"edges"`
	Lanes     []Swimlane `json:"lanes"`
	UI        UIState    `json:"ui"`
}

// Content returns the undo-tracked part of the document.
func (d Document) Content() Content {
	return Content{Nodes: d.Nodes, Edges: d.Edges, Lanes: d.Lanes}.Clone()
}

// NodeIndex returns the position of each node ID in nodes.
func NodeIndex(nodes []Node) map[string]int {
	m := make(map[string]int, len(nodes))
	for i, n := range nodes {
		m[n.ID] = i
	}
	return m
}

// cloneSlice never returns nil so that empty collections encode as [].
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
