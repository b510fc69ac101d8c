// Package engine orchestrates graph layout for the topology view: it decides
// when the external layout function must re-run, merges positioned output
// into the display collections, keeps the viewport fitted to content, and
// overlays the focus arrangement while a node is selected.
//
// The engine is single-threaded by contract: each event runs one synchronous
// state transition to completion. Callers that deliver events from multiple
// goroutines must serialize them.
package engine

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/narayan-iyengar/scope/pkg/cache"
	"github.com/narayan-iyengar/scope/pkg/focus"
	"github.com/narayan-iyengar/scope/pkg/layout"
	"github.com/narayan-iyengar/scope/pkg/topology"
	"github.com/narayan-iyengar/scope/pkg/viewport"
)

// DefaultCacheTTL is how long cached layouts stay valid. Layout output is
// deterministic for a given input, so the TTL only bounds storage growth.
const DefaultCacheTTL = 24 * time.Hour

// Engine owns the current node/edge collections, the tracked layout input,
// and the viewport controller. All mutation happens through Transition.
type Engine struct {
	layoutFn layout.Func
	logger   *log.Logger
	cache    cache.Cache
	cacheTTL time.Duration

	sizeLimits layout.SizeLimits
	density    focus.Density

	// onBackgroundClick fires when a gesture resolved to a plain click with
	// no pan/zoom delta; the owning UI uses it for deselection.
	onBackgroundClick func()

	vp *viewport.Controller

	input      *layout.Input
	nodes      []topology.Node
	edges      []topology.Edge
	graph      layout.Graph
	nodeScale  layout.Scale
	focusScale layout.Scale

	topologyID  string
	selectedID  string
	adjacentIDs []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCache enables the layout result cache. Caching is off by default.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithCacheTTL overrides the layout cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.cacheTTL = ttl }
}

// WithSizeLimits overrides the node size bounds.
func WithSizeLimits(lim layout.SizeLimits) Option {
	return func(e *Engine) { e.sizeLimits = lim }
}

// WithDensity overrides the focus ring density thresholds.
func WithDensity(d focus.Density) Option {
	return func(e *Engine) { e.density = d }
}

// WithBackgroundClickHandler registers the deselection callback invoked when
// a gesture resolves to a plain click.
func WithBackgroundClickHandler(fn func()) Option {
	return func(e *Engine) { e.onBackgroundClick = fn }
}

// New creates an engine around the given layout function.
func New(layoutFn layout.Func, opts ...Option) *Engine {
	e := &Engine{
		layoutFn:   layoutFn,
		logger:     log.Default(),
		cache:      cache.NewDisabled(),
		cacheTTL:   DefaultCacheTTL,
		sizeLimits: layout.DefaultSizeLimits(),
		density:    focus.DefaultDensity(),
		vp:         viewport.NewController(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// Exposed state
// =============================================================================

// GraphState is what a rendering layer needs to draw the current view.
type GraphState struct {
	Nodes    []topology.Node `json:"nodes"`
	Edges    []topology.Edge `json:"edges"`
	Viewport viewport.State  `json:"viewport"`

	// NodeScale is the scale for the whole graph; FocusScale replaces it
	// while a node is selected.
	NodeScale  layout.Scale `json:"-"`
	FocusScale layout.Scale `json:"-"`

	TopologyID string `json:"topologyId,omitempty"`
	SelectedID string `json:"selectedId,omitempty"`
}

// CurrentGraphState returns a copy of the drawable state. The copy is deep
// for the node and edge collections, so renderers never observe a transition
// in progress.
func (e *Engine) CurrentGraphState() GraphState {
	return GraphState{
		Nodes:      topology.CloneNodes(e.nodes),
		Edges:      topology.CloneEdges(e.edges),
		Viewport:   e.vp.State(),
		NodeScale:  e.nodeScale,
		FocusScale: e.focusScale,
		TopologyID: e.topologyID,
		SelectedID: e.selectedID,
	}
}

// Viewport exposes the viewport controller, e.g. for session persistence of
// the zoom cache. Callers must respect the single-threading contract.
func (e *Engine) Viewport() *viewport.Controller { return e.vp }

// NodeScale returns the scale computed by the last layout pass.
func (e *Engine) NodeScale() layout.Scale { return e.nodeScale }

// Selected returns the currently selected node id, or "".
func (e *Engine) Selected() string { return e.selectedID }
