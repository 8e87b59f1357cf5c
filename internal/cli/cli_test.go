package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/guardrail"
	flio "github.com/matzehuels/flowlane/pkg/io"
	"github.com/matzehuels/flowlane/pkg/workspace"
)

// env is a throwaway config and workspace for running commands.
type env struct {
	t      *testing.T
	dir    string
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	toml := fmt.Sprintf("[workspace]\ndir = %q\n\n[cache]\ndir = %q\n\n[editor]\norientation = \"horizontal\"\n",
		filepath.Join(dir, "ws"), filepath.Join(dir, "cache"))
	if err := os.WriteFile(cfg, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	return &env{t: t, dir: dir, config: cfg}
}

// run executes the root command with args and returns what it printed.
func (e *env) run(args ...string) (string, error) {
	e.t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	defer func() { out = prev }()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", e.config}, args...))
	root.SetOut(&buf)
	root.SetErr(&buf)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func (e *env) mustRun(args ...string) string {
	e.t.Helper()
	s, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, s)
	}
	return s
}

func (e *env) doc(name string) *diagram.Document {
	e.t.Helper()
	ws, err := workspace.Open(filepath.Join(e.dir, "ws"))
	if err != nil {
		e.t.Fatal(err)
	}
	doc, err := ws.Get(context.Background(), name)
	if err != nil {
		e.t.Fatal(err)
	}
	return doc
}

func TestNewCreatesDefaultDocument(t *testing.T) {
	e := newEnv(t)
	e.mustRun("new", "flow")

	doc := e.doc("flow")
	if len(doc.Nodes) != 0 || len(doc.Edges) != 0 || len(doc.Lanes) != 3 {
		t.Errorf("document = %d nodes, %d edges, %d lanes", len(doc.Nodes), len(doc.Edges), len(doc.Lanes))
	}

	if _, err := e.run("new", "flow"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second new: err = %v, want INVALID_INPUT", err)
	}
	e.mustRun("new", "flow", "--force")
}

func TestGuardrailWorkflow(t *testing.T) {
	e := newEnv(t)
	e.mustRun("new", "flow")
	e.mustRun("node", "add", "flow", "sponsor", "--name", "Bank A")
	e.mustRun("node", "add", "flow", "internal-ledger", "--y", "300")
	e.mustRun("edge", "add", "flow", "Bank A", "Internal Ledger", "--rail", "RTP", "--speed", "T+0", "--direction", "Push")

	doc := e.doc("flow")
	if len(doc.Edges) != 1 {
		t.Fatalf("edges = %d", len(doc.Edges))
	}
	if doc.Edges[0].Label != "RTP" {
		t.Errorf("label = %q", doc.Edges[0].Label)
	}
	for _, n := range doc.Nodes {
		if n.Selected {
			t.Errorf("node %s saved as selected", n.ID)
		}
	}

	s, err := e.run("check", "flow")
	if err == nil {
		t.Fatal("check passed with a real-time push into a ledger")
	}
	if !strings.Contains(s, guardrail.MessageLedgerOfRecord) {
		t.Errorf("check output missing ledger warning:\n%s", s)
	}

	e.mustRun("edge", "set", "flow", doc.Edges[0].ID, "--speed", "T+1", "--ledger", "Core")
	if _, err := e.run("check", "flow"); err != nil {
		t.Errorf("check after fix: %v", err)
	}
}

func TestEdgeRejections(t *testing.T) {
	e := newEnv(t)
	e.mustRun("new", "flow")
	e.mustRun("node", "add", "flow", "Wallet")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"self loop", []string{"edge", "add", "flow", "Wallet", "Wallet"}, errors.ErrCodeRejected},
		{"unknown node", []string{"edge", "add", "flow", "Wallet", "Nobody"}, errors.ErrCodeNotFound},
		{"bad rail", []string{"edge", "set", "flow", "edge", "--rail", "Carrier Pigeon"}, errors.ErrCodeInvalidInput},
		{"unknown kind", []string{"node", "add", "flow", "Bank"}, errors.ErrCodeInvalidKind},
		{"nothing to set", []string{"node", "set", "flow", "Wallet"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.run(tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
	if n := len(e.doc("flow").Edges); n != 0 {
		t.Errorf("edges = %d after rejected commands", n)
	}
}

func TestNodeCommands(t *testing.T) {
	e := newEnv(t)
	e.mustRun("new", "flow")
	e.mustRun("node", "add", "flow", "Fintech", "--x", "10", "--y", "20")
	e.mustRun("node", "add", "flow", "Processor")
	e.mustRun("edge", "add", "flow", "Fintech", "Processor")

	e.mustRun("node", "set", "flow", "fintech", "--jurisdiction", "US", "--settlement-access", "Indirect")
	e.mustRun("node", "move", "flow", "Fintech", "--x", "500")
	e.mustRun("node", "dup", "flow", "Fintech")

	doc := e.doc("flow")
	if len(doc.Nodes) != 3 {
		t.Fatalf("nodes = %d after dup", len(doc.Nodes))
	}
	n := doc.Nodes[0]
	if n.Attributes.Jurisdiction != "US" || n.Position != (diagram.Position{X: 500, Y: 20}) {
		t.Errorf("node = %+v", n)
	}
	if got := doc.Nodes[2].Attributes.DisplayName; got != "Fintech"+diagram.CopySuffix {
		t.Errorf("copy name = %q", got)
	}

	e.mustRun("node", "reset", "flow", n.ID)
	if got := e.doc("flow").Nodes[0].Attributes.Jurisdiction; got != "(unset)" {
		t.Errorf("jurisdiction after reset = %q", got)
	}

	e.mustRun("node", "rm", "flow", n.ID)
	doc = e.doc("flow")
	if len(doc.Nodes) != 2 || len(doc.Edges) != 0 {
		t.Errorf("after rm: %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
	}
}

func TestLaneCommands(t *testing.T) {
	e := newEnv(t)
	e.mustRun("new", "flow")
	e.mustRun("lane", "add", "flow", "--label", "Rails")
	e.mustRun("lane", "rename", "flow", "Customer", "   ")
	e.mustRun("lane", "resize", "flow", "Program", "+40")
	e.mustRun("lane", "resize", "flow", "Rails", "10")
	e.mustRun("lane", "hide", "flow", "lane-bank")
	e.mustRun("lane", "order", "flow", "Rails")
	e.mustRun("lane", "orientation", "flow", "vertical")

	doc := e.doc("flow")
	byID := map[string]diagram.Swimlane{}
	var rails diagram.Swimlane
	for _, l := range doc.Lanes {
		byID[l.ID] = l
		if l.Label == "Rails" {
			rails = l
		}
		if l.Orientation != diagram.Vertical {
			t.Errorf("lane %s orientation = %q", l.ID, l.Orientation)
		}
	}
	if got := byID["lane-customer"].Label; got != "Untitled lane" {
		t.Errorf("blank rename = %q", got)
	}
	if got := byID["lane-program"].Size; got != 260 {
		t.Errorf("relative resize = %v", got)
	}
	if rails.Size != diagram.MinLaneSize || rails.Order != 0 {
		t.Errorf("rails lane = %+v", rails)
	}
	if byID["lane-bank"].Visible {
		t.Error("hidden lane still visible")
	}
	if doc.UI.LaneOrientation != diagram.Vertical {
		t.Errorf("ui orientation = %q", doc.UI.LaneOrientation)
	}

	s := e.mustRun("lane", "bands", "flow")
	if strings.Contains(s, "Bank & Rails") {
		t.Errorf("bands list a hidden lane:\n%s", s)
	}

	e.mustRun("lane", "rm", "flow", "Rails")
	if n := len(e.doc("flow").Lanes); n != 3 {
		t.Errorf("lanes after rm = %d", n)
	}
}

func TestRenderCommand(t *testing.T) {
	e := newEnv(t)
	e.mustRun("new", "flow")
	e.mustRun("node", "add", "flow", "Sponsor")

	s := e.mustRun("render", "flow", "-f", "dot")
	if !strings.HasPrefix(s, "digraph G {") || !strings.Contains(s, "cluster_") {
		t.Errorf("dot output = %.120s", s)
	}

	path := filepath.Join(e.dir, "out", "flow.dot")
	e.mustRun("render", "flow", "-o", path, "--lanes=false")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "cluster_") {
		t.Error("--lanes=false still drew clusters")
	}

	svg := filepath.Join(e.dir, "out", "flow.svg")
	e.mustRun("render", "flow", "-o", svg)
	cached, err := filepath.Glob(filepath.Join(e.dir, "cache", "*", "*.json"))
	if err != nil || len(cached) != 1 {
		t.Errorf("cache entries = %v, %v", cached, err)
	}
	e.mustRun("render", "flow", "-o", svg, "--no-cache")

	if _, err := e.run("render", "flow", "-f", "png");!errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("png: err = %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	e := newEnv(t)
	e.mustRun("new", "flow")
	e.mustRun("node", "add", "flow", "Correspondent")

	file := filepath.Join(e.dir, "flow.json")
	e.mustRun("export", "flow", "-o", file)
	e.mustRun("import", file, "copy")

	if got := e.doc("copy").Nodes; len(got) != 1 || got[0].Kind != "Correspondent" {
		t.Errorf("imported nodes = %+v", got)
	}

	// File refs work anywhere a document is expected.
	e.mustRun("node", "add", file, "Wallet")
	doc, err := flio.ImportJSON(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != 2 {
		t.Errorf("file doc nodes = %d", len(doc.Nodes))
	}

	s := e.mustRun("list")
	if !strings.Contains(s, "copy") || !strings.Contains(s, "flow") {
		t.Errorf("list output:\n%s", s)
	}
	e.mustRun("rm", "copy")
	if _, err := e.run("show", "copy"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show removed doc: err = %v", err)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	e := newEnv(t)
	file := filepath.Join(e.dir, "bad.json")
	if err := os.WriteFile(file, []byte(`{"nodes": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.run("import", file, "bad"); !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("err = %v, want INVALID_DOCUMENT", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t)
	if err := os.WriteFile(e.config, []byte("[editor]\norientation = \"diagonal\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.run("list"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
