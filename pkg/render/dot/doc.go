// Package dot exports diagram documents as Graphviz DOT and SVG.
//
// Convert a document to DOT, then render it in-process:
//
//	src := dot.ToDOT(doc, dot.OptionsFromUI(doc.UI))
//	svg, err := dot.RenderSVG(ctx, src)
//
// Each visible lane becomes a cluster holding the nodes whose center lies
// in its band (see [lanes.Compute]). With [Options.Guardrails] set, edges
// with an error-severity issue are drawn red and edges with only warnings
// amber. Pull movements are dashed.
//
// The DOT is a structural export, not a pixel copy of the canvas: Graphviz
// computes its own layout inside each cluster.
//
// This package uses [github.com/goccy/go-graphviz] for SVG rendering, which
// needs no system Graphviz install.
package dot
