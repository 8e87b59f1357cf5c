// Package io provides JSON import and export of diagram documents.
//
// # JSON Format
//
// A document is a JSON object with two required arrays and optional
// metadata:
//
//	{
//	  "version": "1.0",
//	  "timestamp": "2026-05-04T10:30:00Z",
//	  "nodes": [
//	    {"id": "a", "kind": "Sponsor", "position": {"x": 0, "y": 0}},
//	    {"id": "b", "kind": "Internal Ledger", "position": {"x": 300, "y": 0}}
//	  ],
//	  "edges": [
//	    {"id": "e", "source": "a", "target": "b", "attributes": {"rail": "ACH"}}
//	  ],
//	  "lanes": [
//	    {"id": "lane-customer", "label": "Customer", "order": 0, "size": 220, "visible": true}
//	  ],
//	  "ui": {"darkMode": false, "background": "dots", "laneOrientation": "horizontal"}
//	}
//
// # Import
//
// [ReadDocument] validates the payload shape and fills missing optional
// parts from the entity factory. Payload validation lives here rather
// than in the store: [store.Store.Hydrate] assumes a well-formed document.
//
//	doc, err := io.ImportJSON(ctx, "flow.json")
//	if err != nil {
//	    return err
//	}
//	s.Hydrate(*doc)
//
// # Export
//
// [WriteDocument] and [ExportJSON] encode the output of
// [store.Store.ExportSnapshot]. Derived edge labels and styles are written
// for the benefit of external renderers but ignored on import.
//
// [store.Store.Hydrate]: github.com/matzehuels/flowlane/pkg/store.Store.Hydrate
// [store.Store.ExportSnapshot]: github.com/matzehuels/flowlane/pkg/store.Store.ExportSnapshot
package io
