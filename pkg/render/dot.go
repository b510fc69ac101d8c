// Package render exports the current graph state as Graphviz DOT and SVG
// snapshots. Positions computed by the engine are pinned via the DOT "pos"
// attribute, so the export reproduces the on-screen arrangement instead of
// re-running a layout.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/narayan-iyengar/scope/pkg/engine"
	"github.com/narayan-iyengar/scope/pkg/topology"
)

// dotScale converts graph-space pixels to DOT points (72 points per inch at
// the conventional 96 px/inch).
const dotScale = 72.0 / 96.0

// ToDOT converts a graph state to Graphviz DOT with pinned node positions.
// Edges reuse the engine's straight polylines implicitly: with pinned
// endpoints, Graphviz draws the connecting line itself.
func ToDOT(state engine.GraphState) string {
	var buf bytes.Buffer
	buf.WriteString("graph scope {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10];\n")
	buf.WriteString("\n")

	for i := range state.Nodes {
		n := &state.Nodes[i]
		attrs := []string{
			fmt.Sprintf("label=%q", n.DisplayLabel()),
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X*dotScale, -n.Y*dotScale),
		}
		attrs = append(attrs, dotShape(n.Shape)...)
		if n.Pseudo {
			attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=lightgrey")
		}
		if n.ID == state.SelectedID {
			attrs = append(attrs, "penwidth=2", "color=blue")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i := range state.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", state.Edges[i].Source, state.Edges[i].Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotShape maps a node's declared shape onto Graphviz node attributes. The
// default circle comes from the graph-level node attributes, so circle,
// empty and unknown shapes emit nothing. Graphviz has no cloud; an ellipse
// reads closest at topology sizes.
func dotShape(shape string) []string {
	switch shape {
	case topology.ShapeSquare:
		return []string{"shape=box"}
	case topology.ShapeHexagon:
		return []string{"shape=hexagon"}
	case topology.ShapeHeptagon:
		return []string{"shape=polygon", "sides=7"}
	case topology.ShapeCloud:
		return []string{"shape=ellipse"}
	default:
		return nil
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
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
	return buf.Bytes(), nil
}
