package layout

import "github.com/narayan-iyengar/scope/pkg/topology"

// =============================================================================
// Layout Function Contract
// =============================================================================

// Options is the bag passed to a layout function.
type Options struct {
	Width           float64           `json:"width"`
	Height          float64           `json:"height"`
	Margins         Margins           `json:"margins"`
	ForceRelayout   bool              `json:"forceRelayout,omitempty"`
	TopologyID      string            `json:"topologyId,omitempty"`
	TopologyOptions map[string]string `json:"topologyOptions,omitempty"`

	// Scale is the node size scale computed for this layout pass; layout
	// functions use it to space nodes proportionally to their size.
	Scale Scale `json:"-"`
}

// Graph is the positioned output of a layout function: nodes with x/y set,
// edges with polylines, and a content bounding box.
type Graph struct {
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Nodes  []topology.Node `json:"nodes"`
	Edges  []topology.Edge `json:"edges"`
}

// Func is a pure, synchronous graph layout algorithm. Implementations must
// not mutate the input slices; they return freshly positioned copies.
//
// The engine treats layout as external: a slow Func blocks the next state
// transition, and a failing Func leaves the previously computed graph in
// place.
type Func func(nodes []topology.Node, edges []topology.Edge, opts Options) (Graph, error)
