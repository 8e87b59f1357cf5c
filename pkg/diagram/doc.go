// Package diagram defines the money-movement diagram model and the factory
// functions that build its entities.
//
// # Model
//
// A diagram is a set of [Node] values (banks, processors, ledgers) joined by
// directed [Edge] values (money movements), drawn over ordered [Swimlane]
// bands. [UIState] carries view preferences alongside the document, and
// [Content] is the part of a document that undo history tracks.
//
// # Factory
//
// Every entity comes from a factory function that fills in defaults:
//
//	n := diagram.NewNode(schema.KindSponsor, diagram.Position{X: 100, Y: 100})
//	e := diagram.NewEdge(a.ID, b.ID, "right", "left")
//	doc := diagram.EmptyDocument(time.Now())
//
// Optional attributes start as [schema.Unset] instead of the empty string so
// that "never touched" stays distinguishable from "cleared by the user".
//
// # Decoration
//
// An edge's Label and Style are derived. [Decorate] recomputes them from the
// edge attributes and is called after every edge mutation. It is idempotent:
// Decorate(Decorate(e)) == Decorate(e).
//
// # Lane order
//
// Lane Order values always form the dense sequence 0..N-1.
// [NormalizeLaneOrder] restores that after any add, remove or reorder.
//
// Factory functions are total; they never reject input.
package diagram
