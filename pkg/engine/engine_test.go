package engine

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	scopeerrors "github.com/narayan-iyengar/scope/pkg/errors"
	"github.com/narayan-iyengar/scope/pkg/layout"
	"github.com/narayan-iyengar/scope/pkg/topology"
	"github.com/narayan-iyengar/scope/pkg/viewport"
)

// stubLayout counts invocations and places node i at (100*i, 50*i). The
// reported bounding box is fixed so fit-to-content behavior is predictable.
type stubLayout struct {
	calls  int
	fail   error
	width  float64
	height float64
}

func (s *stubLayout) fn(nodes []topology.Node, edges []topology.Edge, opts layout.Options) (layout.Graph, error) {
	s.calls++
	if s.fail != nil {
		return layout.Graph{}, s.fail
	}
	out := topology.CloneNodes(nodes)
	for i := range out {
		out[i].X = float64(i) * 100
		out[i].Y = float64(i) * 50
	}
	outEdges := topology.CloneEdges(edges)
	idx := topology.NodeIndex(out)
	for i := range outEdges {
		a, b := out[idx[outEdges[i].Source]], out[idx[outEdges[i].Target]]
		outEdges[i].Points = []topology.Point{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}}
	}
	w, h := s.width, s.height
	if w == 0 {
		w = 300
	}
	if h == 0 {
		h = 300
	}
	return layout.Graph{Width: w, Height: h, Nodes: out, Edges: outEdges}, nil
}

func newTestEngine(s *stubLayout, opts ...Option) *Engine {
	opts = append([]Option{WithLogger(log.New(io.Discard))}, opts...)
	return New(s.fn, opts...)
}

func snapshot() Snapshot {
	return Snapshot{
		Nodes: []topology.Node{
			{ID: "a", Adjacency: []string{"b"}},
			{ID: "b", Adjacency: []string{"c"}},
			{ID: "c"},
		},
		TopologyID: "containers",
		Width:      400,
		Height:     400,
	}
}

func deliver(t *testing.T, e *Engine, ev Event) {
	t.Helper()
	if err := e.Transition(context.Background(), ev); err != nil {
		t.Fatalf("transition: %v", err)
	}
}

func TestInputChangedComputesLayout(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)

	deliver(t, e, InputChanged{Snapshot: snapshot()})

	if stub.calls != 1 {
		t.Fatalf("layout calls = %d, want 1", stub.calls)
	}
	state := e.CurrentGraphState()
	if len(state.Nodes) != 3 || len(state.Edges) != 2 {
		t.Fatalf("got %d nodes, %d edges, want 3 and 2", len(state.Nodes), len(state.Edges))
	}
	b := topology.NodeByID(state.Nodes, "b")
	if b.X != 100 || b.Y != 50 {
		t.Errorf("b at (%v, %v), want (100, 50)", b.X, b.Y)
	}
	if b.PX != b.X || b.PY != b.Y {
		t.Error("restore baseline must equal the fresh layout position")
	}
}

func TestUnchangedSnapshotSkipsLayout(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)

	deliver(t, e, InputChanged{Snapshot: snapshot()})
	deliver(t, e, InputChanged{Snapshot: snapshot()})

	if stub.calls != 1 {
		t.Errorf("layout calls = %d, want 1 for two identical snapshots", stub.calls)
	}
}

func TestEmptyInputSkipsLayout(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)

	snap := snapshot()
	snap.Nodes = nil
	deliver(t, e, InputChanged{Snapshot: snap})

	if stub.calls != 0 {
		t.Errorf("layout calls = %d, want 0 for an empty snapshot", stub.calls)
	}
	state := e.CurrentGraphState()
	if len(state.Nodes) != 0 || len(state.Edges) != 0 {
		t.Error("empty input must clear the display collections")
	}
}

func TestFitToContent(t *testing.T) {
	stub := &stubLayout{width: 1000, height: 500}
	e := newTestEngine(stub)

	deliver(t, e, InputChanged{Snapshot: snapshot()})

	// min(400/1000, 400/500) = 0.4
	if got := e.Viewport().State().Scale; got != 0.4 {
		t.Errorf("scale = %v, want 0.4", got)
	}
	if e.Viewport().State().HasZoomed {
		t.Error("fit-to-content must not count as a manual zoom")
	}
}

func TestFitToContentRespectsManualZoom(t *testing.T) {
	stub := &stubLayout{width: 1000, height: 500}
	e := newTestEngine(stub)

	deliver(t, e, Gesture{Scale: 1.5, TranslateX: 10, TranslateY: 20})
	deliver(t, e, InputChanged{Snapshot: snapshot()})

	if got := e.Viewport().State().Scale; got != 1.5 {
		t.Errorf("scale = %v, want the manual 1.5 untouched", got)
	}
}

func TestLayoutFailureKeepsPreviousGraph(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)

	deliver(t, e, InputChanged{Snapshot: snapshot()})

	stub.fail = errors.New("solver diverged")
	snap := snapshot()
	snap.Nodes = append(snap.Nodes, topology.Node{ID: "d"})
	err := e.Transition(context.Background(), InputChanged{Snapshot: snap})
	if err == nil {
		t.Fatal("expected a layout error")
	}
	if scopeerrors.GetCode(err) != scopeerrors.ErrCodeLayoutFailed {
		t.Errorf("code = %s, want %s", scopeerrors.GetCode(err), scopeerrors.ErrCodeLayoutFailed)
	}

	// Carried-over nodes keep their last good coordinates.
	b := topology.NodeByID(e.CurrentGraphState().Nodes, "b")
	if b == nil || b.X != 100 || b.Y != 50 {
		t.Error("previous coordinates must survive a layout failure")
	}

	// The failed input was not committed, so the next snapshot retries.
	stub.fail = nil
	deliver(t, e, InputChanged{Snapshot: snap})
	if stub.calls != 3 {
		t.Errorf("layout calls = %d, want 3 (initial, failed, retry)", stub.calls)
	}
}

func TestStaleLayoutNodeNotResurrected(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)
	deliver(t, e, InputChanged{Snapshot: snapshot()})

	snap := snapshot()
	snap.Nodes = snap.Nodes[:2] // drop "c"
	snap.Nodes[1].Adjacency = nil
	deliver(t, e, InputChanged{Snapshot: snap})

	state := e.CurrentGraphState()
	if topology.NodeByID(state.Nodes, "c") != nil {
		t.Error("a node absent from input must not reappear from layout output")
	}
	if len(state.Nodes) != 2 {
		t.Errorf("got %d nodes, want 2", len(state.Nodes))
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)
	deliver(t, e, InputChanged{Snapshot: snapshot()})

	before := e.CurrentGraphState()
	deliver(t, e, SelectionChanged{NodeID: "b", AdjacentIDs: []string{"a", "c"}})

	if e.Selected() != "b" {
		t.Fatalf("selected = %q, want b", e.Selected())
	}
	focused := e.CurrentGraphState()
	b := topology.NodeByID(focused.Nodes, "b")
	if b.X == 100 && b.Y == 50 {
		t.Error("selected node must move to the visible center")
	}
	if !e.Viewport().Focused() {
		t.Error("focus mode must suppress gestures")
	}

	// Gestures during focus are ignored entirely.
	deliver(t, e, Gesture{Scale: 1.8})
	if e.Viewport().State().Scale != before.Viewport.Scale {
		t.Error("gesture applied while focused")
	}

	deliver(t, e, SelectionChanged{})
	after := e.CurrentGraphState()
	if e.Selected() != "" {
		t.Fatal("selection must clear")
	}
	for _, n := range after.Nodes {
		orig := topology.NodeByID(before.Nodes, n.ID)
		if n.X != orig.X || n.Y != orig.Y {
			t.Errorf("node %s at (%v, %v) after unfocus, want (%v, %v)", n.ID, n.X, n.Y, orig.X, orig.Y)
		}
	}
	if got := e.Viewport().State(); got != before.Viewport {
		t.Errorf("viewport = %+v after unfocus, want %+v", got, before.Viewport)
	}
}

func TestFocusSurvivesRelayout(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)
	deliver(t, e, InputChanged{Snapshot: snapshot()})
	deliver(t, e, SelectionChanged{NodeID: "b", AdjacentIDs: []string{"a", "c"}})

	// A changed snapshot with the same selection relays out the graph; the
	// selected node must come back centered instead of staying wherever the
	// new layout put it.
	snap := snapshot()
	snap.Nodes = append(snap.Nodes, topology.Node{ID: "d"})
	snap.SelectedNodeID = "b"
	snap.AdjacentNodes = []string{"a", "c"}
	deliver(t, e, InputChanged{Snapshot: snap})

	if e.Selected() != "b" {
		t.Fatalf("selected = %q, want b", e.Selected())
	}
	b := topology.NodeByID(e.CurrentGraphState().Nodes, "b")
	if b.X != 200 || b.Y != 200 {
		t.Errorf("b at (%v, %v) after relayout, want re-centered (200, 200)", b.X, b.Y)
	}
	if !e.Viewport().Focused() {
		t.Error("focus mode must survive the relayout")
	}

	// Unfocus restores the fresh layout baseline, not the old one.
	deliver(t, e, SelectionChanged{})
	b = topology.NodeByID(e.CurrentGraphState().Nodes, "b")
	if b.X != 100 || b.Y != 50 {
		t.Errorf("b at (%v, %v) after unfocus, want the layout position (100, 50)", b.X, b.Y)
	}
}

func TestSelectionOfStaleNode(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)
	deliver(t, e, InputChanged{Snapshot: snapshot()})

	deliver(t, e, SelectionChanged{NodeID: "vanished", AdjacentIDs: []string{"a"}})
	if e.Selected() != "" {
		t.Error("selecting a missing node must leave nothing selected")
	}
	if e.Viewport().Focused() {
		t.Error("stale selection must not enter focus mode")
	}
}

func TestReselectRestoresBeforeRefocus(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)
	deliver(t, e, InputChanged{Snapshot: snapshot()})

	deliver(t, e, SelectionChanged{NodeID: "a", AdjacentIDs: []string{"b"}})
	deliver(t, e, SelectionChanged{NodeID: "c", AdjacentIDs: []string{"b"}})

	// "a" was a neighborless bystander of the second focus; it must be back
	// on its layout baseline, not on the first focus ring.
	a := topology.NodeByID(e.CurrentGraphState().Nodes, "a")
	if a.X != a.PX || a.Y != a.PY {
		t.Error("previous focus arrangement leaked into the new one")
	}
	if e.Selected() != "c" {
		t.Errorf("selected = %q, want c", e.Selected())
	}
}

func TestBackgroundClick(t *testing.T) {
	var clicks int
	stub := &stubLayout{}
	e := newTestEngine(stub, WithBackgroundClickHandler(func() { clicks++ }))

	deliver(t, e, Gesture{Click: true})
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
	if e.Viewport().State().HasZoomed {
		t.Error("a plain click must not count as a zoom")
	}
}

func TestTopologySwitchThroughInput(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)

	deliver(t, e, InputChanged{Snapshot: snapshot()})
	deliver(t, e, Gesture{Scale: 1.5, TranslateX: 30, TranslateY: 40})
	zoomed := e.Viewport().State()

	other := snapshot()
	other.TopologyID = "hosts"
	other.Nodes = []topology.Node{{ID: "h1"}}
	deliver(t, e, InputChanged{Snapshot: other})

	if got := e.Viewport().State(); got != viewport.DefaultState() {
		t.Errorf("fresh topology viewport = %+v, want default", got)
	}

	deliver(t, e, InputChanged{Snapshot: snapshot()})
	if got := e.Viewport().State(); got != zoomed {
		t.Errorf("returning viewport = %+v, want cached %+v", got, zoomed)
	}
}

func TestTopologySwitchClearsSelection(t *testing.T) {
	stub := &stubLayout{}
	e := newTestEngine(stub)

	deliver(t, e, InputChanged{Snapshot: snapshot()})
	deliver(t, e, SelectionChanged{NodeID: "a", AdjacentIDs: []string{"b"}})

	deliver(t, e, TopologyChanged{TopologyID: "hosts"})
	if e.Selected() != "" {
		t.Error("selection must not survive a topology switch")
	}
	if e.Viewport().Focused() {
		t.Error("focus mode must not survive a topology switch")
	}
}
