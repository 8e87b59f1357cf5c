package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/diagram"
	"github.com/matzehuels/flowlane/pkg/guardrail"
	"github.com/matzehuels/flowlane/pkg/lanes"
	"github.com/matzehuels/flowlane/pkg/schema"
)

// Options configures DOT generation.
type Options struct {
	// Lanes groups nodes into one cluster per visible lane.
	Lanes bool

	// Guardrails colours edges by their worst guardrail issue.
	Guardrails bool

	// Dark uses a dark background and light text.
	Dark bool
}

// OptionsFromUI maps a document's export preferences to Options.
func OptionsFromUI(ui diagram.UIState) Options {
	return Options{
		Lanes:      ui.Export.IncludeLanes && ui.ShowLanes,
		Guardrails: ui.Export.IncludeGuardrails,
		Dark:       ui.DarkMode,
	}
}

// Edge colours by guardrail severity.
const (
	colorError   = "#dc2626"
	colorWarning = "#d97706"
)

var kindFill = map[schema.NodeKind]string{
	schema.KindSponsor:        "#dbeafe",
	schema.KindFintech:        "#ede9fe",
	schema.KindProcessor:      "#e0f2fe",
	schema.KindCardNetwork:    "#fce7f3",
	schema.KindCentralBank:    "#fef3c7",
	schema.KindCorrespondent:  "#dcfce7",
	schema.KindWallet:         "#f3e8ff",
	schema.KindInternalLedger: "#f1f5f9",
	schema.KindEndUser:        "#ffedd5",
}

// ToDOT converts a document to Graphviz DOT.
//
// Horizontal lanes lay out left to right, vertical lanes top to bottom.
// A node belongs to the lane whose band contains its center; nodes outside
// every band are emitted at the top level.
func ToDOT(doc diagram.Document, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if doc.UI.LaneOrientation == diagram.Vertical {
		buf.WriteString("  rankdir=TB;\n")
	} else {
		buf.WriteString("  rankdir=LR;\n")
	}
	bg, fg := "transparent", "#0f172a"
	if opts.Dark {
		bg, fg = "#0f172a", "#e2e8f0"
	}
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", bg)
	fmt.Fprintf(&buf, "  fontcolor=%q;\n", fg)
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=%g, arrowhead=normal];\n",
		diagram.DefaultEdgeStyle.Stroke, diagram.DefaultEdgeStyle.StrokeWidth)
	buf.WriteString("\n")

	members := map[string][]diagram.Node{}
	var loose []diagram.Node
	var bands []lanes.Band
	if opts.Lanes {
		bands = lanes.Compute(doc.Lanes, doc.UI.LaneOrientation)
	}
	for _, n := range doc.Nodes {
		center := diagram.Position{X: n.Position.X + n.Size.Width/2, Y: n.Position.Y + n.Size.Height/2}
		if b, ok := lanes.BandAt(bands, center); ok {
			members[b.LaneID] = append(members[b.LaneID], n)
			continue
		}
		loose = append(loose, n)
	}

	for i, b := range bands {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", b.Label)
		buf.WriteString("    style=\"rounded,dashed\";\n")
		fmt.Fprintf(&buf, "    color=%q;\n", "#94a3b8")
		for _, n := range members[b.LaneID] {
			fmt.Fprintf(&buf, "    %s\n", fmtNode(n))
		}
		buf.WriteString("  }\n")
	}
	for _, n := range loose {
		fmt.Fprintf(&buf, "  %s\n", fmtNode(n))
	}

	var issues []guardrail.Issue
	if opts.Guardrails {
		issues = guardrail.Evaluate(doc.Nodes, doc.Edges)
	}
	present := diagram.NodeIndex(doc.Nodes)

	buf.WriteString("\n")
	for _, e := range doc.Edges {
		if _, ok := present[e.Source]; !ok {
			continue
		}
		if _, ok := present[e.Target]; !ok {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(fmtEdgeAttrs(e, issues), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtNode(n diagram.Node) string {
	label := n.Attributes.DisplayName
	if string(n.Kind) != label {
		label += "\n" + string(n.Kind)
	}
	fill, ok := kindFill[n.Kind]
	if !ok {
		fill = "white"
	}
	return fmt.Sprintf("%q [label=%q, fillcolor=%q];", n.ID, label, fill)
}

func fmtEdgeAttrs(e diagram.Edge, issues []guardrail.Issue) []string {
	attrs := []string{fmt.Sprintf("label=%q", e.Label)}
	sev, ok := guardrail.Worst(guardrail.ForEdge(issues, e.ID))
	switch {
	case ok && sev == guardrail.SeverityError:
		attrs = append(attrs, fmt.Sprintf("color=%q", colorError), fmt.Sprintf("fontcolor=%q", colorError))
	case ok && sev == guardrail.SeverityWarning:
		attrs = append(attrs, fmt.Sprintf("color=%q", colorWarning), fmt.Sprintf("fontcolor=%q", colorWarning))
	}
	if e.Attributes.Direction == schema.DirectionPull {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// CachedSVG returns the SVG for src from c, rendering and storing it on a
// miss. The second result reports a cache hit. Cache failures are not
// fatal: the SVG is rendered and returned anyway.
func CachedSVG(ctx context.Context, c cache.Cache, src string) ([]byte, bool, error) {
	key := cache.SVGKey(src)
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	svg, err := RenderSVG(ctx, src)
	if err != nil {
		return nil, false, err
	}
	_ = c.Set(ctx, key, svg, cache.DefaultTTL)
	return svg, false, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales from a zero
// origin with explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
