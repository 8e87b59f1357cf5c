package lanes

import (
	"strings"

	"github.com/matzehuels/flowlane/pkg/diagram"
)

// PlaceholderLabel replaces a lane label that was emptied during rename.
const PlaceholderLabel = "Untitled lane"

// Resizer receives lane sizes from a drag. [store.Store] implements it.
type Resizer interface {
	ResizeLane(id string, size float64)
}

// Renamer receives committed lane labels. [store.Store] implements it.
type Renamer interface {
	RenameLane(id, label string)
}

// =============================================================================
// Resize
// =============================================================================

// ResizeTracker follows one resize drag from press to release. The host
// dispatches pointer events one at a time; the tracker is not safe for
// concurrent use.
//
// Sizes are written through on every move. The resizer clamps them, so any
// pointer delta is safe to forward.
type ResizeTracker struct {
	target      Resizer
	orientation diagram.Orientation

	active    bool
	laneID    string
	startSize float64
	origin    float64
}

// NewResizeTracker returns a tracker writing to target for lanes in
// orientation o.
func NewResizeTracker(target Resizer, o diagram.Orientation) *ResizeTracker {
	return &ResizeTracker{target: target, orientation: o}
}

// SetOrientation changes the drag axis. An active drag is abandoned.
func (t *ResizeTracker) SetOrientation(o diagram.Orientation) {
	t.orientation = o
	t.Release()
}

// Press starts tracking a drag of laneID's handle.
func (t *ResizeTracker) Press(laneID string, startSize float64, pointer diagram.Position) {
	t.active = true
	t.laneID = laneID
	t.startSize = startSize
	t.origin = Axis(t.orientation, pointer)
}

// Move resizes the tracked lane to its start size plus the pointer
// displacement along the stacking axis since Press. It returns the size
// written, or false when no drag is active.
func (t *ResizeTracker) Move(pointer diagram.Position) (float64, bool) {
	if !t.active {
		return 0, false
	}
	size := t.startSize + Axis(t.orientation, pointer) - t.origin
	t.target.ResizeLane(t.laneID, size)
	return size, true
}

// Release ends the drag. It always clears tracking state, including when
// the pointer is released outside the handle or no drag was active.
func (t *ResizeTracker) Release() {
	*t = ResizeTracker{target: t.target, orientation: t.orientation}
}

// Active reports whether a drag is being tracked.
func (t *ResizeTracker) Active() bool { return t.active }

// LaneID returns the lane being resized, or "".
func (t *ResizeTracker) LaneID() string { return t.laneID }

// =============================================================================
// Rename
// =============================================================================

// RenameEditor is the inline label editor of the lane overlay. A label is
// either static or being edited; double-click calls Begin, blur or Enter
// calls Commit, Escape calls Cancel.
type RenameEditor struct {
	target Renamer

	editing bool
	laneID  string
	draft   string
}

// NewRenameEditor returns an editor writing to target.
func NewRenameEditor(target Renamer) *RenameEditor {
	return &RenameEditor{target: target}
}

// Begin enters edit mode for laneID with current as the initial draft.
// Beginning a new edit discards any uncommitted draft.
func (e *RenameEditor) Begin(laneID, current string) {
	e.editing = true
	e.laneID = laneID
	e.draft = current
}

// SetDraft replaces the text being edited. It is ignored outside edit mode.
func (e *RenameEditor) SetDraft(text string) {
	if e.editing {
		e.draft = text
	}
}

// Draft returns the text being edited.
func (e *RenameEditor) Draft() string { return e.draft }

// LaneID returns the lane being edited, or "".
func (e *RenameEditor) LaneID() string { return e.laneID }

// Editing reports whether a label is in edit mode.
func (e *RenameEditor) Editing() bool { return e.editing }

// Commit writes the trimmed draft, or PlaceholderLabel if it is empty, and
// leaves edit mode. It returns the label written and false outside edit
// mode.
func (e *RenameEditor) Commit() (string, bool) {
	if !e.editing {
		return "", false
	}
	label := strings.TrimSpace(e.draft)
	if label == "" {
		label = PlaceholderLabel
	}
	id := e.laneID
	e.reset()
	e.target.RenameLane(id, label)
	return label, true
}

// Cancel leaves edit mode without writing.
func (e *RenameEditor) Cancel() { e.reset() }

func (e *RenameEditor) reset() {
	e.editing = false
	e.laneID = ""
	e.draft = ""
}
