// Package pkg provides the core libraries of flowlane, a money-movement
// diagram engine.
//
// # Overview
//
// A flowlane diagram places financial institutions, systems and accounts on
// a canvas, connects them with payment flows and groups them into
// swimlanes. Every change is re-checked against settlement guardrails, so a
// diagram always carries the warnings and errors of its current content.
//
// The typical data flow:
//
//	JSON document / HTTP request / CLI command
//	         ↓
//	    [store] (single owner of nodes, edges, lanes, UI, selection)
//	         ↓
//	    [guardrail] (re-evaluated after every graph change)
//	         ↓
//	    Snapshot → [api] / [render/dot] / [io]
//
// # Quick Start
//
//	st := store.New()
//	st.Hydrate(diagram.EmptyDocument(time.Now()))
//	h := history.Attach(st)
//
//	bank := st.AddNode(schema.KindSponsor, diagram.Position{})
//	ledger := st.AddNode(schema.KindInternalLedger, diagram.Position{Y: 300})
//	id, _ := st.AddConnection(bank, ledger, "", "")
//	rail, speed, push := schema.RailRTP, schema.SpeedRealtime, schema.DirectionPush
//	st.UpdateEdgeAttributes(id, store.EdgePatch{Rail: &rail, SettlementSpeed: &speed, Direction: &push})
//
//	for _, is := range st.Guardrails() {
//	    fmt.Println(is.Severity, is.Message)
//	}
//	h.Undo()
//
// # Main Packages
//
// ## Core
//
// [schema] - Closed vocabularies: node kinds, rails, settlement speeds,
// directions and the inspector field metadata.
//
// [diagram] - The document model and entity factory (ids, defaults, edge
// decoration, cloning, default lanes).
//
// [guardrail] - The settlement rules evaluated over nodes and edges.
//
// [store] - The state container. All mutations go through it; subscribers
// are notified with a [store.Snapshot] after each change.
//
// [lanes] - Band geometry for swimlanes, the resize drag tracker and the
// inline rename editor.
//
// [history] - Undo and redo over document content.
//
// ## Persistence and transport
//
// [io] - JSON import and export with payload validation.
//
// [workspace] - Named documents stored as files.
//
// [api] - A chi HTTP API over one store.
//
// [render/dot] - Graphviz DOT and SVG export, lanes as clusters.
//
// [cache] - Content-addressed cache for rendered SVG.
//
// ## Ambient
//
// [config] - TOML configuration. [errors] - Coded errors.
// [observability] - Hooks for store and io events. [buildinfo] - Version
// information.
//
// # Testing
//
//	go test ./...               # All tests
//	go test ./pkg/store/...     # Specific package
//	go test -run Example ./...  # Examples only
//
// [schema]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/schema
// [diagram]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/diagram
// [guardrail]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/guardrail
// [store]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/store
// [lanes]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/lanes
// [history]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/history
// [io]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/io
// [workspace]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/workspace
// [api]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/api
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/render/dot
// [cache]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/flowlane/pkg/buildinfo
package pkg
