package lanes

import (
	"cmp"
	"slices"

	"github.com/matzehuels/flowlane/pkg/diagram"
)

// BandExtent is the span of every band along the axis perpendicular to
// stacking, large enough to cover any practical canvas.
const BandExtent = 20000.0

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r. The leading edges are inclusive,
// the trailing edges exclusive, so adjacent rects never both contain a point.
func (r Rect) Contains(p diagram.Position) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Band is the rendered geometry of one visible lane.
type Band struct {
	LaneID string  `json:"laneId"`
	Label  string  `json:"label"`
	Start  float64 `json:"start"`
	Size   float64 `json:"size"`
	Rect   Rect    `json:"rect"`
}

// End returns the coordinate where the band stops along the stacking axis.
func (b Band) End() float64 { return b.Start + b.Size }

// Handle is a resize grip between two adjacent bands. Dragging it resizes
// the leading lane.
type Handle struct {
	LaneID   string  `json:"laneId"`
	Position float64 `json:"position"`
}

// Compute lays out the visible lanes end to end in Order, centered on the
// origin along the stacking axis. Horizontal lanes stack vertically;
// vertical lanes stack horizontally. Hidden lanes take no space.
func Compute(lanes []diagram.Swimlane, o diagram.Orientation) []Band {
	visible := make([]diagram.Swimlane, 0, len(lanes))
	for _, l := range lanes {
		if l.Visible {
			visible = append(visible, l)
		}
	}
	slices.SortStableFunc(visible, func(a, b diagram.Swimlane) int { return cmp.Compare(a.Order, b.Order) })

	var total float64
	for _, l := range visible {
		total += l.Size
	}

	bands := make([]Band, 0, len(visible))
	offset := -total / 2
	for _, l := range visible {
		bands = append(bands, Band{
			LaneID: l.ID,
			Label:  l.Label,
			Start:  offset,
			Size:   l.Size,
			Rect:   bandRect(offset, l.Size, o),
		})
		offset += l.Size
	}
	return bands
}

func bandRect(start, size float64, o diagram.Orientation) Rect {
	if o == diagram.Vertical {
		return Rect{X: start, Y: -BandExtent / 2, Width: size, Height: BandExtent}
	}
	return Rect{X: -BandExtent / 2, Y: start, Width: BandExtent, Height: size}
}

// Handles returns one resize handle per adjacent pair of bands, placed at
// the end of the leading band.
func Handles(bands []Band) []Handle {
	if len(bands) < 2 {
		return nil
	}
	handles := make([]Handle, 0, len(bands)-1)
	for _, b := range bands[:len(bands)-1] {
		handles = append(handles, Handle{LaneID: b.LaneID, Position: b.End()})
	}
	return handles
}

// BandAt returns the band containing p.
func BandAt(bands []Band, p diagram.Position) (Band, bool) {
	for _, b := range bands {
		if b.Rect.Contains(p) {
			return b, true
		}
	}
	return Band{}, false
}

// Axis returns the coordinate of p along the stacking axis of o.
func Axis(o diagram.Orientation, p diagram.Position) float64 {
	if o == diagram.Vertical {
		return p.X
	}
	return p.Y
}
