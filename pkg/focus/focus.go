// Package focus computes the temporary arrangement shown while a single node
// is selected: the selected node centered in the visible graph area with its
// neighbors on a ring, and the exact inverse restore.
package focus

import (
	"math"

	"github.com/narayan-iyengar/scope/pkg/layout"
	"github.com/narayan-iyengar/scope/pkg/topology"
	"github.com/narayan-iyengar/scope/pkg/viewport"
)

// =============================================================================
// Ring Density
// =============================================================================

// Density maps a neighbor count to the divisor used for the ring radius
// (radius = min(viewport)/density/scale). The defaults are empirical tuning
// constants; they are configuration, not derived values.
type Density struct {
	Breakpoints []int     `toml:"breakpoints" json:"breakpoints"`
	Levels      []float64 `toml:"levels" json:"levels"`
}

// DefaultDensity returns the built-in ring density thresholds.
func DefaultDensity() Density {
	return Density{Breakpoints: []int{3, 6}, Levels: []float64{2.5, 3.5, 3.0}}
}

// For returns the density level for a neighbor count: counts below the first
// breakpoint get Levels[0], counts from Breakpoints[i-1] up to (excluding)
// Breakpoints[i] get Levels[i], and so on.
func (d Density) For(count int) float64 {
	if len(d.Levels) == 0 {
		return DefaultDensity().For(count)
	}
	for i, b := range d.Breakpoints {
		if count < b && i < len(d.Levels) {
			return d.Levels[i]
		}
	}
	return d.Levels[len(d.Levels)-1]
}

// =============================================================================
// Focus
// =============================================================================

// Options carries the viewport context a focus arrangement depends on.
type Options struct {
	// ViewportWidth/Height are the raw canvas dimensions.
	ViewportWidth  float64
	ViewportHeight float64

	// Viewport is the active pan/scale transform.
	Viewport viewport.State

	// Margins describe the non-graph chrome; the left margin (side panel)
	// shifts the visible center so the selected node lands in the middle of
	// the area the user can actually see.
	Margins layout.Margins

	// Density overrides the ring density; zero value means defaults.
	Density Density

	// SizeLimits bounds the focus node scale; zero value means defaults.
	SizeLimits layout.SizeLimits
}

// Result is the outcome of a focus arrangement.
type Result struct {
	Nodes []topology.Node
	Edges []topology.Edge

	// NodeScale is computed from the neighbor count alone: the focus view
	// shows far fewer nodes than the whole graph.
	NodeScale layout.Scale

	// Applied is false when selectedID did not resolve to a node; in that
	// case Nodes and Edges are the inputs, unchanged.
	Applied bool
}

// Apply arranges the graph around selectedID: the selected node moves to the
// visible center, neighbors spread on a ring, every edge touching the
// selection or a neighbor becomes a straight two-point polyline, and
// everything else keeps its coordinates.
//
// A selectedID with no corresponding node is a no-op, not an error: the
// selection may reference a node that has since left the layout.
func Apply(selectedID string, adjacentIDs []string, nodes []topology.Node, edges []topology.Edge, opts Options) Result {
	if topology.NodeByID(nodes, selectedID) == nil {
		return Result{Nodes: nodes, Edges: edges}
	}

	// Self-loops must not put the selected node on its own ring.
	neighbors := make([]string, 0, len(adjacentIDs))
	for _, id := range adjacentIDs {
		if id != selectedID {
			neighbors = append(neighbors, id)
		}
	}

	out := topology.CloneNodes(nodes)
	idx := topology.NodeIndex(out)

	cx, cy := visibleCenter(opts)
	sel := &out[idx[selectedID]]
	sel.X, sel.Y = cx, cy

	scale := opts.Viewport.Scale
	if scale <= 0 {
		scale = 1
	}
	density := opts.Density
	if len(density.Levels) == 0 {
		density = DefaultDensity()
	}
	radius := math.Min(opts.ViewportWidth, opts.ViewportHeight) / density.For(len(neighbors)) / scale

	moved := map[string]struct{}{selectedID: {}}
	n := float64(len(neighbors))
	for i, id := range neighbors {
		ni, ok := idx[id]
		if !ok {
			continue
		}
		angle := math.Pi/4 + 2*math.Pi*float64(i)/n
		out[ni].X = cx + radius*math.Sin(angle)
		out[ni].Y = cy + radius*math.Cos(angle)
		moved[id] = struct{}{}
	}

	outEdges := topology.CloneEdges(edges)
	for i := range outEdges {
		e := &outEdges[i]
		_, srcMoved := moved[e.Source]
		_, dstMoved := moved[e.Target]
		if !srcMoved && !dstMoved {
			continue
		}
		si, ok1 := idx[e.Source]
		ti, ok2 := idx[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		e.Points = []topology.Point{
			{X: out[si].X, Y: out[si].Y},
			{X: out[ti].X, Y: out[ti].Y},
		}
	}

	lim := opts.SizeLimits
	if lim == (layout.SizeLimits{}) {
		lim = layout.DefaultSizeLimits()
	}
	return Result{
		Nodes:     out,
		Edges:     outEdges,
		NodeScale: layout.NewNodeScaleWithLimits(len(neighbors), opts.ViewportWidth, opts.ViewportHeight, lim),
		Applied:   true,
	}
}

// Restore undoes a focus arrangement: every node returns to its px/py
// baseline and every edge with a saved polyline returns to it. Combined with
// viewport.Controller.ExitFocus this is the exact inverse of Apply, provided
// no relayout ran in between.
func Restore(nodes []topology.Node, edges []topology.Edge) ([]topology.Node, []topology.Edge) {
	outNodes := topology.CloneNodes(nodes)
	for i := range outNodes {
		outNodes[i].X = outNodes[i].PX
		outNodes[i].Y = outNodes[i].PY
	}

	outEdges := topology.CloneEdges(edges)
	for i := range outEdges {
		if len(outEdges[i].PPoints) > 0 {
			outEdges[i].Points = append([]topology.Point(nil), outEdges[i].PPoints...)
		}
	}
	return outNodes, outEdges
}

// visibleCenter inverse-maps the center of the visible graph area through
// the pan/scale transform. The left chrome (side panel) shifts the visible
// center right by half its width.
func visibleCenter(opts Options) (float64, float64) {
	scale := opts.Viewport.Scale
	if scale <= 0 {
		scale = 1
	}
	cx := (opts.ViewportWidth/2 + opts.Margins.Left/2 - opts.Viewport.PanX) / scale
	cy := (opts.ViewportHeight/2 - opts.Viewport.PanY) / scale
	return cx, cy
}
