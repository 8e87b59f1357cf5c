package io

import (
	"bytes"
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/schema"
	"github.com/matzehuels/flowlane/pkg/store"
)

func TestReadDocumentRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"not json", `{nodes`, errors.ErrCodeInvalidDocument},
		{"array", `[]`, errors.ErrCodeInvalidDocument},
		{"string", `"doc"`, errors.ErrCodeInvalidDocument},
		{"no nodes", `{}`, errors.ErrCodeInvalidDocument},
		{"no edges", `{"nodes": []}`, errors.ErrCodeInvalidDocument},
		{"nodes not array", `{"nodes": {}, "edges": []}`, errors.ErrCodeInvalidDocument},
		{"edges null", `{"nodes": [], "edges": null}`, errors.ErrCodeInvalidDocument},
		{"node without id", `{"nodes": [{"kind": "Sponsor"}], "edges": []}`, errors.ErrCodeInvalidDocument},
		{"duplicate node", `{"nodes": [{"id": "a", "kind": "Sponsor"}, {"id": "a", "kind": "Wallet"}], "edges": []}`, errors.ErrCodeInvalidDocument},
		{"unknown kind", `{"nodes": [{"id": "a", "kind": "Bank"}], "edges": []}`, errors.ErrCodeInvalidKind},
		{"edge without target", `{"nodes": [], "edges": [{"id": "e", "source": "a"}]}`, errors.ErrCodeInvalidDocument},
		{"node attributes not object", `{"nodes": [{"id": "a", "kind": "Sponsor", "attributes": "x"}], "edges": []}`, errors.ErrCodeInvalidDocument},
		{"edge attributes array", `{"nodes": [], "edges": [{"id": "e", "source": "a", "target": "b", "attributes": []}]}`, errors.ErrCodeInvalidDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ReadDocument(strings.NewReader(tt.input))
			if err == nil {
				t.Fatalf("ReadDocument() = %+v, want error", doc)
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %q, want %q (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestReadDocumentFillsDefaults(t *testing.T) {
	input := `{
	  "nodes": [
	    {"id": "a", "kind": "Sponsor", "position": {"x": 10, "y": 20}},
	    {"id": "b", "kind": "Internal Ledger", "attributes": {"displayName": "Core"}}
	  ],
	  "edges": [
	    {"id": "e1", "source": "a", "target": "b"},
	    {"id": "e2", "source": "a", "target": "b", "label": "forged", "attributes": {"rail": "ACH"}}
	  ],
	  "ui": {"darkMode": true, "export": {"includeGuardrails": true}}
	}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}

	if doc.Version != diagram.FormatVersion {
		t.Errorf("Version = %q", doc.Version)
	}
	a := doc.Nodes[0]
	if a.Size != diagram.DefaultNodeSize || a.Attributes != diagram.DefaultNodeAttributes(schema.KindSponsor) {
		t.Errorf("node a = %+v", a)
	}
	if doc.Nodes[1].Attributes.DisplayName != "Core" {
		t.Errorf("node b attributes = %+v", doc.Nodes[1].Attributes)
	}
	if doc.Edges[0].Attributes != diagram.DefaultEdgeAttributes() {
		t.Errorf("edge e1 attributes = %+v, want factory defaults", doc.Edges[0].Attributes)
	}
	if doc.Edges[1].Label != "ACH" {
		t.Errorf("edge e2 label = %q, want derived ACH", doc.Edges[1].Label)
	}
	if !reflect.DeepEqual(doc.Lanes, diagram.DefaultLanes(diagram.Horizontal)) {
		t.Errorf("lanes = %+v, want defaults", doc.Lanes)
	}

	want := diagram.DefaultUI()
	want.DarkMode = true
	want.Export.IncludeGuardrails = true
	if doc.UI != want {
		t.Errorf("UI = %+v, want %+v", doc.UI, want)
	}
}

func TestReadDocumentPartialAttributes(t *testing.T) {
	input := `{
	  "nodes": [
	    {"id": "a", "kind": "Sponsor", "attributes": {"description": "x"}},
	    {"id": "b", "kind": "Wallet", "attributes": {}},
	    {"id": "c", "kind": "Fintech", "attributes": {"regulator": ""}},
	    {"id": "d", "kind": "Processor", "attributes": null}
	  ],
	  "edges": [
	    {"id": "e", "source": "a", "target": "b", "attributes": {"rail": "ACH"}}
	  ]
	}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}

	wantA := diagram.DefaultNodeAttributes(schema.KindSponsor)
	wantA.Description = "x"
	wantC := diagram.DefaultNodeAttributes(schema.KindFintech)
	wantC.Regulator = ""
	tests := []struct {
		id   string
		want diagram.NodeAttributes
	}{
		{"a", wantA},
		{"b", diagram.DefaultNodeAttributes(schema.KindWallet)},
		{"c", wantC},
		{"d", diagram.DefaultNodeAttributes(schema.KindProcessor)},
	}
	for i, tt := range tests {
		if got := doc.Nodes[i].Attributes; got != tt.want {
			t.Errorf("node %s attributes = %+v, want %+v", tt.id, got, tt.want)
		}
	}

	wantE := diagram.DefaultEdgeAttributes()
	wantE.Rail = "ACH"
	if got := doc.Edges[0].Attributes; got != wantE {
		t.Errorf("edge attributes = %+v, want %+v", got, wantE)
	}
	if doc.Edges[0].Attributes.SettlementSpeed != schema.Unset {
		t.Errorf("missing settlementSpeed = %q, want %q", doc.Edges[0].Attributes.SettlementSpeed, schema.Unset)
	}
}

func TestReadDocumentLanes(t *testing.T) {
	input := `{
	  "nodes": [], "edges": [],
	  "lanes": [
	    {"id": "x", "label": "X", "order": 4, "size": 10},
	    {"label": "no id", "order": 0},
	    {"id": "y", "label": "Y", "order": 1, "visible": false},
	    {"id": "x", "label": "dup", "order": 9}
	  ],
	  "ui": {"laneOrientation": "vertical"}
	}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	want := []diagram.Swimlane{
		{ID: "y", Label: "Y", Order: 0, Size: diagram.DefaultLaneSize, Visible: false, Orientation: diagram.Vertical},
		{ID: "x", Label: "X", Order: 1, Size: diagram.MinLaneSize, Visible: true, Orientation: diagram.Vertical},
	}
	if !reflect.DeepEqual(doc.Lanes, want) {
		t.Errorf("lanes = %+v\nwant %+v", doc.Lanes, want)
	}
}

func TestRoundTrip(t *testing.T) {
	s := store.New(store.WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }))
	a := s.AddNode(schema.KindSponsor, diagram.Position{X: 1, Y: 2})
	b := s.AddNode(schema.KindProcessor, diagram.Position{X: 300, Y: 2})
	e, _ := s.AddConnection(a, b, "right", "left")
	rail := schema.RailWire
	s.UpdateEdgeAttributes(e, store.EdgePatch{Rail: &rail})
	s.RenameLane("lane-bank", "Rails")
	s.ClearSelection()

	original := s.ExportSnapshot()

	var buf bytes.Buffer
	if err := WriteDocument(original, &buf); err != nil {
		t.Fatalf("WriteDocument() error = %v", err)
	}
	got, err := ReadDocument(&buf)
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}
	if !reflect.DeepEqual(*got, original) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *got, original)
	}
}

func TestMarshalEmptyCollections(t *testing.T) {
	data, err := MarshalDocument(diagram.Document{})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"nodes": []`, `"edges": []`, `"lanes": []`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("output missing %s:\n%s", key, data)
		}
	}
}

type ioRecorder struct {
	imports, exports []string
	lastErr          error
}

func (r *ioRecorder) OnImport(_ context.Context, source string, _ int, err error) {
	r.imports = append(r.imports, source)
	r.lastErr = err
}

func (r *ioRecorder) OnExport(_ context.Context, target string, _ int, err error) {
	r.exports = append(r.exports, target)
	r.lastErr = err
}

func TestExportImportFile(t *testing.T) {
	rec := &ioRecorder{}
	observability.SetIOHooks(rec)
	defer observability.Reset()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "flow.json")
	doc := diagram.EmptyDocument(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if err := ExportJSON(ctx, doc, path); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	got, err := ImportJSON(ctx, path)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if !reflect.DeepEqual(*got, doc) {
		t.Errorf("ImportJSON() = %+v, want %+v", *got, doc)
	}

	if len(rec.exports) != 1 || len(rec.imports) != 1 {
		t.Errorf("hooks saw %d exports, %d imports", len(rec.exports), len(rec.imports))
	}
}

func TestExportJSONConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.json")
	doc := diagram.EmptyDocument(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ExportJSON(ctx, doc, path); err != nil {
				t.Errorf("ExportJSON() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := ImportJSON(ctx, path); err != nil {
		t.Fatalf("ImportJSON() after concurrent export: %v", err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestImportExampleDocument(t *testing.T) {
	doc, err := ImportJSON(context.Background(), filepath.Join("..", "..", "examples", "card-program.json"))
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	if len(doc.Nodes) != 5 || len(doc.Edges) != 3 || len(doc.Lanes) != 3 {
		t.Fatalf("example = %d nodes, %d edges, %d lanes", len(doc.Nodes), len(doc.Edges), len(doc.Lanes))
	}
	if got := doc.Nodes[2].Attributes.DisplayName; got != "Processor" {
		t.Errorf("missing attributes should default to the kind name, got %q", got)
	}

	st := store.New()
	st.Hydrate(*doc)
	issues := st.Guardrails()
	if len(issues) != 2 {
		t.Fatalf("guardrails = %+v", issues)
	}
	for _, is := range issues {
		if is.EdgeID != "instant-credit" {
			t.Errorf("unexpected issue on %s: %s", is.EdgeID, is.Message)
		}
	}
}
