// Package force provides the default layout function: a deterministic,
// seeded force-directed arrangement with circular initialization. It is a
// plain implementation of [layout.Func]; the engine itself never depends on
// it, so callers can swap in any other algorithm.
package force

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/narayan-iyengar/scope/pkg/layout"
	"github.com/narayan-iyengar/scope/pkg/topology"
)

// Iterations is the number of relaxation passes. The layout converges well
// before this for typical topology sizes (tens to low hundreds of nodes).
const Iterations = 120

// Layout is a deterministic force-directed layout. Nodes start on a circle,
// then repulsion between all pairs and spring attraction along edges relax
// the arrangement. The seed is derived from the topology id so the same
// input always produces the same geometry.
func Layout(nodes []topology.Node, edges []topology.Edge, opts layout.Options) (layout.Graph, error) {
	out := layout.Graph{
		Nodes: topology.CloneNodes(nodes),
		Edges: topology.CloneEdges(edges),
	}
	if len(out.Nodes) == 0 {
		return out, nil
	}

	w := opts.Width - opts.Margins.Left - opts.Margins.Right
	h := opts.Height - opts.Margins.Top - opts.Margins.Bottom
	if w <= 0 {
		w = opts.Width
	}
	if h <= 0 {
		h = opts.Height
	}

	placeOnCircle(out.Nodes, w, h)
	if len(out.Nodes) > 1 {
		relax(out.Nodes, out.Edges, w, h, opts)
	}
	fitToBox(out.Nodes, w, h, opts.Scale.Max())

	for i := range out.Nodes {
		out.Nodes[i].X += opts.Margins.Left
		out.Nodes[i].Y += opts.Margins.Top
	}
	routeEdges(&out)

	out.Width = w + opts.Margins.Left + opts.Margins.Right
	out.Height = h + opts.Margins.Top + opts.Margins.Bottom
	return out, nil
}

// placeOnCircle distributes nodes evenly on a circle centered in the box.
func placeOnCircle(nodes []topology.Node, w, h float64) {
	cx, cy := w/2, h/2
	radius := math.Min(cx, cy) * 0.8
	step := 2 * math.Pi / float64(len(nodes))
	for i := range nodes {
		angle := float64(i) * step
		nodes[i].X = cx + radius*math.Cos(angle)
		nodes[i].Y = cy + radius*math.Sin(angle)
	}
}

func relax(nodes []topology.Node, edges []topology.Edge, w, h float64, opts layout.Options) {
	n := len(nodes)
	idx := topology.NodeIndex(nodes)
	rng := rand.New(rand.NewSource(seed(opts.TopologyID)))

	// Ideal spring length: spread the available area across nodes, never
	// tighter than twice the node size.
	k := math.Sqrt(w * h / float64(n))
	if min := 2 * opts.Scale.Max(); k < min {
		k = min
	}

	// Deterministic jitter so coincident nodes repel in a stable direction.
	for i := range nodes {
		nodes[i].X += rng.Float64() - 0.5
		nodes[i].Y += rng.Float64() - 0.5
	}

	temp := math.Max(w, h) / 10
	cool := temp / float64(Iterations+1)

	dx := make([]float64, n)
	dy := make([]float64, n)
	for iter := 0; iter < Iterations; iter++ {
		for i := range dx {
			dx[i], dy[i] = 0, 0
		}

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				vx := nodes[i].X - nodes[j].X
				vy := nodes[i].Y - nodes[j].Y
				dist := math.Hypot(vx, vy)
				if dist < 1e-6 {
					dist = 1e-6
				}
				f := k * k / dist
				dx[i] += vx / dist * f
				dy[i] += vy / dist * f
				dx[j] -= vx / dist * f
				dy[j] -= vy / dist * f
			}
		}

		for _, e := range edges {
			si, ok1 := idx[e.Source]
			ti, ok2 := idx[e.Target]
			if !ok1 || !ok2 || si == ti {
				continue
			}
			vx := nodes[si].X - nodes[ti].X
			vy := nodes[si].Y - nodes[ti].Y
			dist := math.Hypot(vx, vy)
			if dist < 1e-6 {
				continue
			}
			f := dist * dist / k * e.Value
			dx[si] -= vx / dist * f
			dy[si] -= vy / dist * f
			dx[ti] += vx / dist * f
			dy[ti] += vy / dist * f
		}

		for i := 0; i < n; i++ {
			disp := math.Hypot(dx[i], dy[i])
			if disp < 1e-6 {
				continue
			}
			limited := math.Min(disp, temp)
			nodes[i].X += dx[i] / disp * limited
			nodes[i].Y += dy[i] / disp * limited
		}
		temp -= cool
	}
}

// fitToBox translates and scales positions so the content, padded by the
// node size, fills the box starting at the origin.
func fitToBox(nodes []topology.Node, w, h, pad float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range nodes {
		minX = math.Min(minX, nodes[i].X)
		minY = math.Min(minY, nodes[i].Y)
		maxX = math.Max(maxX, nodes[i].X)
		maxY = math.Max(maxY, nodes[i].Y)
	}

	spanX := maxX - minX
	spanY := maxY - minY
	availW := w - 2*pad
	availH := h - 2*pad
	if availW <= 0 {
		availW = w
	}
	if availH <= 0 {
		availH = h
	}

	sx, sy := 1.0, 1.0
	if spanX > 0 {
		sx = availW / spanX
	}
	if spanY > 0 {
		sy = availH / spanY
	}
	s := math.Min(sx, sy)

	for i := range nodes {
		nodes[i].X = pad + (nodes[i].X-minX)*s
		nodes[i].Y = pad + (nodes[i].Y-minY)*s
	}
}

// routeEdges assigns straight two-point polylines from the positioned
// endpoints.
func routeEdges(g *layout.Graph) {
	idx := topology.NodeIndex(g.Nodes)
	for i := range g.Edges {
		si, ok1 := idx[g.Edges[i].Source]
		ti, ok2 := idx[g.Edges[i].Target]
		if !ok1 || !ok2 {
			continue
		}
		g.Edges[i].Points = []topology.Point{
			{X: g.Nodes[si].X, Y: g.Nodes[si].Y},
			{X: g.Nodes[ti].X, Y: g.Nodes[ti].Y},
		}
	}
}

func seed(topologyID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(topologyID))
	return int64(h.Sum64())
}
