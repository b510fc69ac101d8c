// Package viewport owns the pan/scale state of the graph view: gesture
// application, the per-topology zoom cache, and the save/restore pair used
// around focus mode.
package viewport

// Scale clamp bounds for externally-driven updates. The gesture source is
// expected to clamp already; the controller clamps again defensively.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// State is the current viewport transform. HasZoomed turns true once the
// user has manually zoomed or panned, and gates automatic fit-to-content.
type State struct {
	Scale     float64 `json:"scale" bson:"scale"`
	PanX      float64 `json:"panX" bson:"panX"`
	PanY      float64 `json:"panY" bson:"panY"`
	HasZoomed bool    `json:"hasZoomed" bson:"hasZoomed"`
}

// DefaultState is the viewport for a topology never seen before.
func DefaultState() State {
	return State{Scale: 1}
}

// ClampScale clamps s into [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// =============================================================================
// Controller
// =============================================================================

// Controller holds the active viewport state plus the per-topology zoom
// cache. It is owned by the orchestrating engine: all mutation happens on a
// single event loop, so the controller does no locking of its own.
type Controller struct {
	state   State
	cache   map[string]State
	focused bool

	// preFocus is the state captured when focus mode was entered, restored
	// on unfocus. Nil outside focus mode.
	preFocus *State
}

// NewController creates a controller with the default viewport state and an
// empty zoom cache.
func NewController() *Controller {
	return &Controller{
		state: DefaultState(),
		cache: make(map[string]State),
	}
}

// State returns the active viewport state.
func (c *Controller) State() State { return c.state }

// SetState replaces the active state, clamping the scale.
func (c *Controller) SetState(s State) {
	s.Scale = ClampScale(s.Scale)
	c.state = s
}

// ApplyGesture applies a raw pan/zoom gesture. While a node is focused the
// gesture is ignored entirely; focus mode suppresses free panning.
// This is the only path that sets HasZoomed.
func (c *Controller) ApplyGesture(scale, panX, panY float64) {
	if c.focused {
		return
	}
	c.state.Scale = ClampScale(scale)
	c.state.PanX = panX
	c.state.PanY = panY
	c.state.HasZoomed = true
}

// FitScale applies an automatic fit-to-content scale. It is a no-op if the
// user has manually zoomed, and never zooms in - only out to fit.
func (c *Controller) FitScale(zoomFactor float64) {
	if c.state.HasZoomed {
		return
	}
	if zoomFactor <= 0 || zoomFactor >= 1 {
		return
	}
	c.state.Scale = ClampScale(zoomFactor)
}

// SwitchTopology snapshots the active state under oldID and activates the
// cached state for newID, or the default state if newID was never visited.
func (c *Controller) SwitchTopology(oldID, newID string) {
	if oldID != "" {
		c.cache[oldID] = c.state
	}
	if s, ok := c.cache[newID]; ok {
		c.state = s
	} else {
		c.state = DefaultState()
	}
	c.focused = false
	c.preFocus = nil
}

// CachedState returns the zoom-cache entry for a topology id.
func (c *Controller) CachedState(topologyID string) (State, bool) {
	s, ok := c.cache[topologyID]
	return s, ok
}

// RestoreCache replaces the whole zoom cache, e.g. from a persisted session.
func (c *Controller) RestoreCache(cache map[string]State) {
	c.cache = make(map[string]State, len(cache))
	for k, v := range cache {
		v.Scale = ClampScale(v.Scale)
		c.cache[k] = v
	}
}

// Cache returns a copy of the zoom cache for persistence.
func (c *Controller) Cache() map[string]State {
	out := make(map[string]State, len(c.cache))
	for k, v := range c.cache {
		out[k] = v
	}
	return out
}

// =============================================================================
// Focus save/restore
// =============================================================================

// EnterFocus captures the current state for later restore and suppresses
// gestures until ExitFocus. Entering focus twice keeps the first snapshot:
// switching selection inside focus mode must still restore the viewport
// from before focus was first entered.
func (c *Controller) EnterFocus() {
	if c.preFocus == nil {
		s := c.state
		c.preFocus = &s
	}
	c.focused = true
}

// ExitFocus restores the state captured by EnterFocus and re-enables
// gestures. A no-op when not in focus mode.
func (c *Controller) ExitFocus() {
	if c.preFocus != nil {
		c.state = *c.preFocus
		c.preFocus = nil
	}
	c.focused = false
}

// Focused reports whether focus mode is suppressing gestures.
func (c *Controller) Focused() bool { return c.focused }
