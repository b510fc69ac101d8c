package engine

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/narayan-iyengar/scope/pkg/cache"
	scopeerrors "github.com/narayan-iyengar/scope/pkg/errors"
	"github.com/narayan-iyengar/scope/pkg/layout"
	"github.com/narayan-iyengar/scope/pkg/observability"
	"github.com/narayan-iyengar/scope/pkg/topology"
)

// recompute runs the external layout function for a changed input and folds
// the positioned result into the display collections. Invoked only when the
// input tracker reports a change.
func (e *Engine) recompute(ctx context.Context, input *layout.Input) error {
	if len(input.Nodes) == 0 {
		// Nothing to lay out; never invoke the layout function for this.
		e.input = input
		e.nodes, e.edges = nil, nil
		e.graph = layout.Graph{}
		e.nodeScale = layout.Scale{}
		return nil
	}

	e.nodeScale = layout.NewNodeScaleWithLimits(len(input.Nodes), input.Width, input.Height, e.sizeLimits)

	graph, err := e.computeGraph(ctx, input)
	if err != nil {
		// Stale-but-valid beats crashing: the previous graph stays
		// displayed, and the tracked input is not advanced so the next
		// snapshot retries.
		return scopeerrors.Wrap(scopeerrors.ErrCodeLayoutFailed, err,
			"layout for topology %q", input.TopologyID)
	}

	// The fresh positions become both the current coordinates and the
	// restore baseline for focus mode.
	for i := range graph.Nodes {
		graph.Nodes[i].PX = graph.Nodes[i].X
		graph.Nodes[i].PY = graph.Nodes[i].Y
	}
	for i := range graph.Edges {
		graph.Edges[i].PPoints = append([]topology.Point(nil), graph.Edges[i].Points...)
	}

	e.mergeLayoutResult(graph)
	e.fitToContent(input, graph)

	e.input = input
	e.graph = graph
	return nil
}

// computeGraph returns the positioned graph for an input, consulting the
// layout cache first. ForceRelayout bypasses the cache read (but still
// refreshes the entry).
func (e *Engine) computeGraph(ctx context.Context, input *layout.Input) (layout.Graph, error) {
	key := cache.LayoutKey(cache.HashJSON(input))

	if !input.ForceRelayout {
		if data, ok, err := e.cache.Get(ctx, key); err == nil && ok {
			var g layout.Graph
			if err := json.Unmarshal(data, &g); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				e.logger.Debug("layout cache hit", "topology", input.TopologyID)
				return g, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	nodes, edges := topology.Normalize(specsToNodes(input.Nodes))

	opts := layout.Options{
		Width:           input.Width,
		Height:          input.Height,
		Margins:         input.Margins,
		ForceRelayout:   input.ForceRelayout,
		TopologyID:      input.TopologyID,
		TopologyOptions: input.TopologyOptions,
		Scale:           e.nodeScale,
	}

	observability.Engine().OnLayoutStart(ctx, input.TopologyID, len(nodes))
	start := time.Now()
	graph, err := e.layoutFn(nodes, edges, opts)
	duration := time.Since(start)
	observability.Engine().OnLayoutComplete(ctx, input.TopologyID, duration, err)
	if err != nil {
		return layout.Graph{}, err
	}

	e.logger.Info("computed layout",
		"topology", input.TopologyID,
		"nodes", len(graph.Nodes),
		"edges", len(graph.Edges),
		"duration", duration.Round(time.Millisecond))

	if data, err := json.Marshal(graph); err == nil {
		if err := e.cache.Set(ctx, key, data, e.cacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return graph, nil
}

// mergeLayoutResult copies coordinates from the layout output into the
// display collections. Only keys already present receive geometry: nodes
// that disappeared from input but linger in stale layout output are not
// resurrected.
func (e *Engine) mergeLayoutResult(graph layout.Graph) {
	idx := topology.NodeIndex(e.nodes)
	for i := range graph.Nodes {
		if di, ok := idx[graph.Nodes[i].ID]; ok {
			e.nodes[di].X = graph.Nodes[i].X
			e.nodes[di].Y = graph.Nodes[i].Y
			e.nodes[di].PX = graph.Nodes[i].PX
			e.nodes[di].PY = graph.Nodes[i].PY
		}
	}

	eidx := make(map[string]int, len(e.edges))
	for i := range e.edges {
		eidx[e.edges[i].ID] = i
	}
	for i := range graph.Edges {
		if di, ok := eidx[graph.Edges[i].ID]; ok {
			e.edges[di].Points = append([]topology.Point(nil), graph.Edges[i].Points...)
			e.edges[di].PPoints = append([]topology.Point(nil), graph.Edges[i].PPoints...)
		}
	}
}

// fitToContent shrinks the viewport scale so the whole graph bounding box is
// visible. It never zooms in, and never fights a manual zoom.
func (e *Engine) fitToContent(input *layout.Input, graph layout.Graph) {
	if graph.Width <= 0 || graph.Height <= 0 {
		return
	}
	availableWidth := input.Width - input.Margins.Left - input.Margins.Right
	xFactor := availableWidth / graph.Width
	yFactor := input.Height / graph.Height
	e.vp.FitScale(math.Min(xFactor, yFactor))
}

func specsToNodes(specs []layout.NodeSpec) []topology.Node {
	nodes := make([]topology.Node, len(specs))
	for i, s := range specs {
		nodes[i] = topology.Node{ID: s.ID, Adjacency: append([]string(nil), s.Adjacency...)}
	}
	return nodes
}
