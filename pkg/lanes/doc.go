// Package lanes computes swimlane band geometry and drives the interactive
// lane overlay.
//
// [Compute] turns the ordered, visible lanes of a document into
// non-overlapping bands laid end to end and centered on the canvas origin.
// Horizontal lanes stack along Y and span [BandExtent] along X; vertical
// lanes swap the axes.
//
// The overlay owns two small state machines:
//
//   - [ResizeTracker] follows a press/move/release drag on a handle between
//     two bands and writes start size plus pointer delta to a [Resizer].
//   - [RenameEditor] edits a lane label inline and commits the trimmed text
//     (or [PlaceholderLabel]) to a [Renamer].
//
// Both write straight to the diagram store, which clamps sizes and
// notifies observers.
package lanes
