package engine

import (
	"context"

	"github.com/narayan-iyengar/scope/pkg/focus"
	"github.com/narayan-iyengar/scope/pkg/layout"
	"github.com/narayan-iyengar/scope/pkg/observability"
	"github.com/narayan-iyengar/scope/pkg/topology"
)

// =============================================================================
// Events
// =============================================================================

// Event is one external trigger for a state transition. The variants are
// InputChanged, SelectionChanged, TopologyChanged and Gesture.
type Event interface {
	isEvent()
}

// Snapshot is the immutable input delivered by the snapshot provider on
// every relevant change.
type Snapshot struct {
	Nodes           []topology.Node   `json:"nodes"`
	Margins         layout.Margins    `json:"margins"`
	TopologyID      string            `json:"topologyId"`
	TopologyOptions map[string]string `json:"topologyOptions,omitempty"`
	ForceRelayout   bool              `json:"forceRelayout,omitempty"`
	Width           float64           `json:"width"`
	Height          float64           `json:"height"`
	SelectedNodeID  string            `json:"selectedNodeId,omitempty"`
	AdjacentNodes   []string          `json:"adjacentNodes,omitempty"`
}

// InputChanged delivers a new input snapshot (data, dimensions, topology,
// selection). Resizes arrive through this event as new width/height.
type InputChanged struct {
	Snapshot Snapshot
}

// SelectionChanged selects a node (with its externally computed neighbor
// ids) or clears the selection when NodeID is empty.
type SelectionChanged struct {
	NodeID      string
	AdjacentIDs []string
}

// TopologyChanged switches to another topology id ahead of its first input
// snapshot, saving and restoring viewport state through the zoom cache.
type TopologyChanged struct {
	TopologyID string
}

// Gesture delivers a raw pan/zoom result from the gesture source. Click is
// true when the gesture resolved to a plain click with no delta.
type Gesture struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
	Click      bool
}

func (InputChanged) isEvent()     {}
func (SelectionChanged) isEvent() {}
func (TopologyChanged) isEvent()  {}
func (Gesture) isEvent()          {}

// =============================================================================
// Transition
// =============================================================================

// Transition applies one event and runs to completion before returning.
// A layout failure is returned to the caller and leaves the previously
// computed graph in place; every other malformed condition degrades
// silently per the engine's error policy.
func (e *Engine) Transition(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case InputChanged:
		return e.handleInput(ctx, ev.Snapshot)
	case SelectionChanged:
		e.handleSelection(ctx, ev.NodeID, ev.AdjacentIDs)
		return nil
	case TopologyChanged:
		e.switchTopology(ctx, ev.TopologyID)
		return nil
	case Gesture:
		e.handleGesture(ev)
		return nil
	default:
		return nil
	}
}

func (e *Engine) handleInput(ctx context.Context, snap Snapshot) error {
	// The zoom-cache save/restore must fully apply before any relayout for
	// the new topology, so fit-to-content compares against the right state.
	if snap.TopologyID != e.topologyID {
		e.switchTopology(ctx, snap.TopologyID)
	}

	nodes, edges := topology.Normalize(snap.Nodes)
	e.mergeDisplayState(nodes, edges)

	next := &layout.Input{
		Width:           snap.Width,
		Height:          snap.Height,
		Margins:         snap.Margins,
		TopologyID:      snap.TopologyID,
		TopologyOptions: snap.TopologyOptions,
		ForceRelayout:   snap.ForceRelayout,
		Nodes:           layout.ProjectNodes(snap.Nodes),
	}

	merged := layout.Merge(e.input, next)
	relaidOut := merged != e.input
	if relaidOut {
		if err := e.recompute(ctx, merged); err != nil {
			return err
		}
	}

	if snap.SelectedNodeID != e.selectedID {
		e.handleSelection(ctx, snap.SelectedNodeID, snap.AdjacentNodes)
	} else if relaidOut && e.selectedID != "" {
		// A relayout replaced the focus arrangement with fresh baseline
		// coordinates; re-center the still-selected node on them. The stored
		// neighbor set is reused since the selection did not change.
		e.handleSelection(ctx, e.selectedID, e.adjacentIDs)
	}
	return nil
}

// mergeDisplayState replaces the display collections with freshly normalized
// ones, carrying over the coordinates owned by the layout side. Neither
// source may silently drop the other: new metadata wins field-by-field,
// existing geometry survives by id.
func (e *Engine) mergeDisplayState(nodes []topology.Node, edges []topology.Edge) {
	prevNodes := topology.NodeIndex(e.nodes)
	for i := range nodes {
		if pi, ok := prevNodes[nodes[i].ID]; ok {
			old := &e.nodes[pi]
			nodes[i].X, nodes[i].Y = old.X, old.Y
			nodes[i].PX, nodes[i].PY = old.PX, old.PY
		}
	}

	prevEdges := make(map[string]int, len(e.edges))
	for i := range e.edges {
		prevEdges[e.edges[i].ID] = i
	}
	for i := range edges {
		if pi, ok := prevEdges[edges[i].ID]; ok {
			old := &e.edges[pi]
			edges[i].Points = append([]topology.Point(nil), old.Points...)
			edges[i].PPoints = append([]topology.Point(nil), old.PPoints...)
		}
	}

	e.nodes, e.edges = nodes, edges
}

func (e *Engine) switchTopology(ctx context.Context, newID string) {
	oldID := e.topologyID
	if oldID == newID {
		return
	}

	// The selection does not survive a topology switch.
	e.selectedID = ""
	e.adjacentIDs = nil
	e.focusScale = layout.Scale{}

	e.vp.SwitchTopology(oldID, newID)
	e.topologyID = newID
	observability.Engine().OnTopologySwitch(ctx, oldID, newID)
	e.logger.Debug("switched topology", "from", oldID, "to", newID)
}

func (e *Engine) handleSelection(ctx context.Context, nodeID string, adjacentIDs []string) {
	if nodeID == "" {
		e.clearSelection(ctx)
		return
	}

	// Switching selection while focused starts from the layout baseline so
	// the previous arrangement never leaks into the new one.
	if e.selectedID != "" {
		e.nodes, e.edges = focus.Restore(e.nodes, e.edges)
	}

	in := e.inputOrZero()
	res := focus.Apply(nodeID, adjacentIDs, e.nodes, e.edges, focus.Options{
		ViewportWidth:  in.Width,
		ViewportHeight: in.Height,
		Viewport:       e.vp.State(),
		Margins:        in.Margins,
		Density:        e.density,
		SizeLimits:     e.sizeLimits,
	})
	if !res.Applied {
		// Stale selection target; keep the restored baseline visible.
		if e.selectedID != "" {
			e.vp.ExitFocus()
			observability.Engine().OnFocusExit(ctx)
		}
		e.selectedID = ""
		e.adjacentIDs = nil
		return
	}

	e.vp.EnterFocus()
	e.nodes, e.edges = res.Nodes, res.Edges
	e.focusScale = res.NodeScale
	e.selectedID = nodeID
	e.adjacentIDs = append([]string(nil), adjacentIDs...)
	observability.Engine().OnFocusEnter(ctx, nodeID, len(adjacentIDs))
}

func (e *Engine) clearSelection(ctx context.Context) {
	if e.selectedID == "" {
		return
	}
	e.nodes, e.edges = focus.Restore(e.nodes, e.edges)
	e.vp.ExitFocus()
	e.selectedID = ""
	e.adjacentIDs = nil
	e.focusScale = layout.Scale{}
	observability.Engine().OnFocusExit(ctx)
}

func (e *Engine) handleGesture(g Gesture) {
	if g.Click {
		if e.onBackgroundClick != nil {
			e.onBackgroundClick()
		}
		return
	}
	e.vp.ApplyGesture(g.Scale, g.TranslateX, g.TranslateY)
}

func (e *Engine) inputOrZero() layout.Input {
	if e.input != nil {
		return *e.input
	}
	return layout.Input{}
}
