package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/history"
	"github.com/matzehuels/flowlane/pkg/schema"
	"github.com/matzehuels/flowlane/pkg/store"
)

type fixture struct {
	t      *testing.T
	store  *store.Store
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New()
	srv := New(st, WithHistory(history.Attach(st)), WithLogger(log.New(io.Discard)))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &fixture{t: t, store: st, server: ts}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (f *fixture) do(method, path string, body any, out any) int {
	f.t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			f.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, f.server.URL+path, r)
	if err != nil {
		f.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		f.t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			f.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (f *fixture) addNode(kind schema.NodeKind) string {
	f.t.Helper()
	var res created
	if code := f.do(http.MethodPost, "/api/nodes", map[string]any{"kind": kind, "position": map[string]float64{"x": 0, "y": 0}}, &res); code != http.StatusCreated {
		f.t.Fatalf("add node status = %d", code)
	}
	return res.ID
}

func TestAddNodeAndConnect(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(schema.KindSponsor)
	b := f.addNode(schema.KindInternalLedger)

	var res created
	code := f.do(http.MethodPost, "/api/edges", map[string]string{"source": a, "target": b}, &res)
	if code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", code)
	}
	if len(res.Snapshot.Edges) != 1 || res.Snapshot.Selection.EdgeID != res.ID {
		t.Errorf("snapshot = %+v", res.Snapshot)
	}

	var snap store.Snapshot
	code = f.do(http.MethodPatch, "/api/edges/"+res.ID, map[string]string{
		"rail": "ACH", "direction": "Push", "settlementSpeed": "T+0",
	}, &snap)
	if code != http.StatusOK {
		t.Fatalf("patch status = %d", code)
	}
	if len(snap.Guardrails) != 2 {
		t.Errorf("guardrails = %+v, want warning and error", snap.Guardrails)
	}
}

func TestSelfLoopIsRejected(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(schema.KindSponsor)

	var body errorBody
	code := f.do(http.MethodPost, "/api/edges", map[string]string{"source": a, "target": a}, &body)
	if code != http.StatusUnprocessableEntity || body.Code != errors.ErrCodeRejected {
		t.Errorf("status = %d, body = %+v; want 422 REJECTED", code, body)
	}
	if n := len(f.store.Snapshot().Edges); n != 0 {
		t.Errorf("edges = %d after rejected connection", n)
	}
}

func TestErrorStatuses(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   errors.Code
	}{
		{"unknown kind", http.MethodPost, "/api/nodes", map[string]string{"kind": "Bank"}, http.StatusBadRequest, errors.ErrCodeInvalidKind},
		{"bad json", http.MethodPost, "/api/nodes", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPatch, "/api/ui", `{"colour": "red"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing node", http.MethodPatch, "/api/nodes/ghost", map[string]string{"displayName": "x"}, http.StatusNotFound, errors.ErrCodeNotFound},
		{"missing edge", http.MethodPost, "/api/edges/ghost/reset", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"missing lane", http.MethodDelete, "/api/lanes/ghost", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"bad orientation", http.MethodPut, "/api/lanes/orientation", map[string]string{"orientation": "diagonal"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad background", http.MethodPatch, "/api/ui", map[string]string{"background": "plaid"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"document not object", http.MethodPut, "/api/document", "[]", http.StatusBadRequest, errors.ErrCodeInvalidDocument},
		{"document without edges", http.MethodPut, "/api/document", `{"nodes": []}`, http.StatusBadRequest, errors.ErrCodeInvalidDocument},
		{"bad render format", http.MethodGet, "/api/render?format=png", nil, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			code := f.do(tt.method, tt.path, tt.body, &body)
			if code != tt.status || body.Code != tt.code {
				t.Errorf("status = %d, code = %s; want %d %s (%s)", code, body.Code, tt.status, tt.code, body.Message)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.addNode(schema.KindWallet)

	var doc diagram.Document
	if code := f.do(http.MethodGet, "/api/document", nil, &doc); code != http.StatusOK {
		t.Fatalf("get status = %d", code)
	}
	if doc.Version != diagram.FormatVersion || len(doc.Nodes) != 1 {
		t.Errorf("document = %+v", doc)
	}

	f.do(http.MethodPost, "/api/document/reset", nil, nil)
	if n := len(f.store.Snapshot().Nodes); n != 0 {
		t.Fatalf("nodes after reset = %d", n)
	}

	var snap store.Snapshot
	if code := f.do(http.MethodPut, "/api/document", doc, &snap); code != http.StatusOK {
		t.Fatalf("put status = %d", code)
	}
	if len(snap.Nodes) != 1 || snap.Nodes[0].ID != doc.Nodes[0].ID {
		t.Errorf("hydrated snapshot = %+v", snap)
	}
}

func TestSelectionRoutes(t *testing.T) {
	f := newFixture(t)
	a := f.addNode(schema.KindSponsor)
	b := f.addNode(schema.KindFintech)

	var snap store.Snapshot
	f.do(http.MethodPut, "/api/selection", map[string]any{"nodes": []string{a, b}}, &snap)
	for _, n := range snap.Nodes {
		if !n.Selected {
			t.Errorf("node %s not flagged", n.ID)
		}
	}

	f.do(http.MethodPost, "/api/selection/duplicate", nil, &snap)
	if len(snap.Nodes) != 4 {
		t.Fatalf("nodes after duplicate = %d", len(snap.Nodes))
	}

	f.do(http.MethodPut, "/api/selection", map[string]string{"nodeId": a}, &snap)
	if snap.Selection.NodeID != a {
		t.Errorf("selection = %+v", snap.Selection)
	}
	f.do(http.MethodDelete, "/api/selection", nil, &snap)
	if len(snap.Nodes) != 3 {
		t.Errorf("nodes after delete = %d", len(snap.Nodes))
	}

	f.do(http.MethodPut, "/api/selection", map[string]any{}, &snap)
	if snap.Selection != (diagram.Selection{}) {
		t.Errorf("selection after clear = %+v", snap.Selection)
	}
}

func TestLaneRoutes(t *testing.T) {
	f := newFixture(t)

	var res created
	f.do(http.MethodPost, "/api/lanes", nil, &res)
	if len(res.Snapshot.Lanes) != 4 {
		t.Fatalf("lanes = %d", len(res.Snapshot.Lanes))
	}

	var snap store.Snapshot
	f.do(http.MethodPatch, "/api/lanes/"+res.ID, map[string]any{"label": "Rails", "size": 10, "visible": false}, &snap)
	l, _ := snap.Lane(res.ID)
	if l.Label != "Rails" || l.Size != diagram.MinLaneSize || l.Visible {
		t.Errorf("lane = %+v", l)
	}

	f.do(http.MethodPut, "/api/lanes/order", map[string]any{"ids": []string{res.ID, "lane-bank"}}, &snap)
	l, _ = snap.Lane(res.ID)
	if l.Order != 0 {
		t.Errorf("reordered lane order = %d", l.Order)
	}

	f.do(http.MethodPut, "/api/lanes/orientation", map[string]string{"orientation": "vertical"}, &snap)
	if snap.UI.LaneOrientation != diagram.Vertical {
		t.Errorf("orientation = %q", snap.UI.LaneOrientation)
	}

	var bands struct {
		Bands   []map[string]any `json:"bands"`
		Handles []map[string]any `json:"handles"`
	}
	f.do(http.MethodGet, "/api/lanes/bands", nil, &bands)
	if len(bands.Bands) != 3 || len(bands.Handles) != 2 {
		t.Errorf("bands = %d, handles = %d; hidden lane should be skipped", len(bands.Bands), len(bands.Handles))
	}

	f.do(http.MethodDelete, "/api/lanes/"+res.ID, nil, &snap)
	if len(snap.Lanes) != 3 {
		t.Errorf("lanes after delete = %d", len(snap.Lanes))
	}
}

func TestUndoRedoRoutes(t *testing.T) {
	f := newFixture(t)
	f.addNode(schema.KindSponsor)

	var snap store.Snapshot
	f.do(http.MethodPatch, "/api/ui", map[string]bool{"darkMode": true}, &snap)
	f.do(http.MethodPost, "/api/undo", nil, &snap)
	if len(snap.Nodes) != 0 {
		t.Errorf("nodes after undo = %d", len(snap.Nodes))
	}
	if !snap.UI.DarkMode {
		t.Error("undo reverted a UI preference")
	}
	f.do(http.MethodPost, "/api/redo", nil, &snap)
	if len(snap.Nodes) != 1 {
		t.Errorf("nodes after redo = %d", len(snap.Nodes))
	}
}

func TestUndoWithoutHistory(t *testing.T) {
	ts := httptest.NewServer(New(store.New(), WithLogger(log.New(io.Discard))).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/undo", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}

func TestReadRoutes(t *testing.T) {
	f := newFixture(t)

	var health map[string]string
	if code := f.do(http.MethodGet, "/healthz", nil, &health); code != http.StatusOK || health["status"] != "ok" || health["version"] == "" {
		t.Errorf("healthz = %d %v", code, health)
	}

	var sch struct {
		Kinds []string `json:"kinds"`
		Rails []string `json:"rails"`
	}
	f.do(http.MethodGet, "/api/schema", nil, &sch)
	if len(sch.Kinds) != len(schema.Kinds()) || len(sch.Rails) != len(schema.Rails()) {
		t.Errorf("schema = %+v", sch)
	}

	var gr struct {
		Issues   []any `json:"issues"`
		Warnings int   `json:"warnings"`
	}
	if code := f.do(http.MethodGet, "/api/guardrails", nil, &gr); code != http.StatusOK || gr.Issues == nil {
		t.Errorf("guardrails status = %d, body = %+v", code, gr)
	}

	resp, err := http.Get(f.server.URL + "/api/render?format=dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(data), "digraph G {") {
		t.Errorf("render dot = %.80s", data)
	}
}

func TestRenderSVGCache(t *testing.T) {
	rc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := store.New()
	ts := httptest.NewServer(New(st, WithRenderCache(rc), WithLogger(log.New(io.Discard))).Handler())
	defer ts.Close()

	get := func() *http.Response {
		t.Helper()
		resp, err := http.Get(ts.URL + "/api/render")
		if err != nil {
			t.Fatal(err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return resp
	}

	first := get()
	if first.StatusCode != http.StatusOK || first.Header.Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("status = %d, type = %q", first.StatusCode, first.Header.Get("Content-Type"))
	}
	if first.Header.Get("X-Render-Cache") != "" {
		t.Error("first render reported a cache hit")
	}
	if got := get().Header.Get("X-Render-Cache"); got != "hit" {
		t.Errorf("second render X-Render-Cache = %q", got)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidDocument, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeRejected, http.StatusUnprocessableEntity},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
