package io

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/schema"
)

// wireNode mirrors diagram.Node with optional parts kept as pointers or raw
// JSON so missing fields can be told apart from zero values.
type wireNode struct {
	ID         string           `json:"id"`
	Kind       schema.NodeKind  `json:"kind"`
	Position   diagram.Position `json:"position"`
	Size       *diagram.Size    `json:"size"`
	Attributes json.RawMessage  `json:"attributes"`
}

type wireEdge struct {
	ID           string          `json:"id"`
	Source       string          `json:"source"`
	Target       string          `json:"target"`
	SourceHandle string          `json:"sourceHandle"`
	TargetHandle string          `json:"targetHandle"`
	Attributes   json.RawMessage `json:"attributes"`
}

type wireLane struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Order   int      `json:"order"`
	Size    *float64 `json:"size"`
	Visible *bool    `json:"visible"`
}

// ReadDocument decodes a document from r.
//
// The payload must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "version": "1.0",
//	  "nodes": [{"id": "a", "kind": "Sponsor", "position": {"x": 0, "y": 0}}],
//	  "edges": [{"id": "e", "source": "a", "target": "b"}]
//	}
//
// Missing optional parts are filled from the factory: node size, node and
// edge attributes (per key), lanes (the three defaults) and UI preferences
// (per field). Derived edge labels and styles in the payload
// are ignored; the store recomputes them on hydrate.
//
// ReadDocument returns an [errors.ErrCodeInvalidDocument] error if:
//   - The JSON is malformed or not an object
//   - "nodes" or "edges" is missing or not an array
//   - A node has no id or a duplicate id
//   - An edge has no id, source or target
//
// and an [errors.ErrCodeInvalidKind] error for a node of unknown kind.
// Self-loops and dangling edges are not errors here; the store drops them.
func ReadDocument(r io.Reader) (*diagram.Document, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode")
	}

	var fields map[string]json.RawMessage
	if !isKind(raw, '{') || json.Unmarshal(raw, &fields) != nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document must be a JSON object")
	}
	for _, key := range []string{"nodes", "edges"} {
		if !isKind(fields[key], '[') {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "document is missing a %q array", key)
		}
	}

	doc := &diagram.Document{Version: diagram.FormatVersion, UI: diagram.DefaultUI()}
	if v, ok := fields["version"]; ok {
		if err := json.Unmarshal(v, &doc.Version); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "version")
		}
	}
	if v, ok := fields["timestamp"]; ok {
		if err := json.Unmarshal(v, &doc.Timestamp); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "timestamp")
		}
	}
	if v, ok := fields["ui"]; ok && isKind(v, '{') {
		if err := json.Unmarshal(v, &doc.UI); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "ui")
		}
	}
	if !doc.UI.LaneOrientation.Valid() {
		doc.UI.LaneOrientation = diagram.Horizontal
	}
	if !diagram.ValidBackgrounds[doc.UI.Background] {
		doc.UI.Background = diagram.BackgroundDots
	}

	var err error
	if doc.Nodes, err = readNodes(fields["nodes"]); err != nil {
		return nil, err
	}
	if doc.Edges, err = readEdges(fields["edges"]); err != nil {
		return nil, err
	}
	if doc.Lanes, err = readLanes(fields["lanes"], doc.UI.LaneOrientation); err != nil {
		return nil, err
	}
	return doc, nil
}

func readNodes(raw json.RawMessage) ([]diagram.Node, error) {
	var in []wireNode
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "nodes")
	}

	seen := make(map[string]bool, len(in))
	nodes := make([]diagram.Node, 0, len(in))
	for i, n := range in {
		if n.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "node %d has no id", i)
		}
		if seen[n.ID] {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true

		kind, ok := schema.ParseKind(string(n.Kind))
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidKind, "node %s: unknown kind %q", n.ID, n.Kind)
		}

		nd := diagram.Node{
			ID:         n.ID,
			Kind:       kind,
			Position:   n.Position,
			Size:       diagram.DefaultNodeSize,
			Attributes: diagram.DefaultNodeAttributes(kind),
		}
		if n.Size != nil && n.Size.Width > 0 && n.Size.Height > 0 {
			nd.Size = *n.Size
		}
		if err := mergeAttributes(n.Attributes, &nd.Attributes); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "node %s attributes", n.ID)
		}
		nodes = append(nodes, nd)
	}
	return nodes, nil
}

func readEdges(raw json.RawMessage) ([]diagram.Edge, error) {
	var in []wireEdge
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "edges")
	}

	edges := make([]diagram.Edge, 0, len(in))
	for i, e := range in {
		if e.ID == "" || e.Source == "" || e.Target == "" {
			return nil, errors.New(errors.ErrCodeInvalidDocument, "edge %d needs id, source and target", i)
		}
		ed := diagram.Edge{
			ID:           e.ID,
			Source:       e.Source,
			Target:       e.Target,
			SourceHandle: e.SourceHandle,
			TargetHandle: e.TargetHandle,
			Attributes:   diagram.DefaultEdgeAttributes(),
		}
		if err := mergeAttributes(e.Attributes, &ed.Attributes); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "edge %s attributes", e.ID)
		}
		edges = append(edges, diagram.Decorate(ed))
	}
	return edges, nil
}

// mergeAttributes decodes raw over dst, which holds the factory defaults.
// Keys absent from raw keep their default (usually schema.Unset); a key
// present with "" stays cleared.
func mergeAttributes(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if !isKind(raw, '{') && string(bytes.TrimSpace(raw)) != "null" {
		return fmt.Errorf("attributes must be an object")
	}
	return json.Unmarshal(raw, dst)
}

func readLanes(raw json.RawMessage, o diagram.Orientation) ([]diagram.Swimlane, error) {
	if !isKind(raw, '[') {
		return diagram.DefaultLanes(o), nil
	}
	var in []wireLane
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "lanes")
	}

	seen := make(map[string]bool, len(in))
	lanes := make([]diagram.Swimlane, 0, len(in))
	for _, l := range in {
		if l.ID == "" || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		lane := diagram.Swimlane{
			ID:          l.ID,
			Label:       l.Label,
			Order:       l.Order,
			Size:        diagram.DefaultLaneSize,
			Visible:     true,
			Orientation: o,
		}
		if l.Size != nil {
			lane.Size = diagram.ClampLaneSize(*l.Size)
		}
		if l.Visible != nil {
			lane.Visible = *l.Visible
		}
		lanes = append(lanes, lane)
	}
	return diagram.NormalizeLaneOrder(lanes), nil
}

// isKind reports whether raw is a JSON value starting with delim.
func isKind(raw json.RawMessage, delim byte) bool {
	b := bytes.TrimLeft(raw, " \t\r\n")
	return len(b) > 0 && b[0] == delim
}

// ImportJSON reads the document file at path.
//
// ImportJSON returns an [errors.ErrCodeFileNotFound] error when the file
// does not exist, and the same validation errors as [ReadDocument]
// otherwise. The outcome is reported to [observability.IO].
func ImportJSON(ctx context.Context, path string) (doc *diagram.Document, err error) {
	defer func() {
		n := 0
		if doc != nil {
			n = len(doc.Nodes)
		}
		observability.IO().OnImport(ctx, path, n, err)
	}()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err = ReadDocument(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
