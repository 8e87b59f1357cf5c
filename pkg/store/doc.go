// Package store implements the diagram state engine.
//
// A [Store] owns the nodes, edges and swimlanes of one diagram together with
// UI preferences, the current selection and the derived guardrail issues.
// It is the single source of truth: UI bindings call its mutation methods
// and observe the results through [Store.Subscribe].
//
// # Mutations
//
// Every mutation runs to completion under the store lock. Graph mutations
// re-derive the guardrail list from the post-mutation nodes and edges before
// any observer sees the new [Snapshot]. Operations are safe to call
// speculatively: invalid input (a self-loop, an unknown id, an unknown kind)
// is ignored and produces no notification. No operation returns an error.
//
//	s := store.New()
//	a := s.AddNode(schema.KindSponsor, diagram.Position{X: 0, Y: 0})
//	b := s.AddNode(schema.KindInternalLedger, diagram.Position{X: 300, Y: 0})
//	e, _ := s.AddConnection(a, b, "right", "left")
//	rail := schema.RailACH
//	s.UpdateEdgeAttributes(e, store.EdgePatch{Rail: &rail})
//	fmt.Println(len(s.Guardrails())) // 1: ledger of record is missing
//
// # Selection
//
// The canvas may flag several elements selected at once (marquee), while
// the inspector tracks a single node or edge id. Delete and duplicate act on
// the union of both signals, computed once per operation.
//
// # Undo
//
// State is split into the undo-tracked [diagram.Content] (nodes, edges,
// lanes) and untracked view state (UI, selection, guardrails). History
// collaborators read [Store.Content] and write back with [Store.Restore];
// each [Snapshot] carries a [Change] whose kind tells them whether to record.
package store
