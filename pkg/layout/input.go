package layout

import "github.com/narayan-iyengar/scope/pkg/topology"

// =============================================================================
// Input - Layout Input Snapshot
// =============================================================================

// Margins reserve viewport space that layout must not use (side panels,
// toolbars).
type Margins struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// NodeSpec is the projection of a node that matters for layout geometry:
// its identity and who it connects to. Display metadata is deliberately
// excluded so that label or metric churn never triggers a relayout.
type NodeSpec struct {
	ID        string   `json:"id"`
	Adjacency []string `json:"adjacency,omitempty"`
}

// Input is a snapshot of everything that determines graph geometry.
// Treat instances as immutable once passed to Merge.
type Input struct {
	Width           float64           `json:"width"`
	Height          float64           `json:"height"`
	Margins         Margins           `json:"margins"`
	TopologyID      string            `json:"topologyId"`
	TopologyOptions map[string]string `json:"topologyOptions,omitempty"`
	ForceRelayout   bool              `json:"forceRelayout,omitempty"`
	Nodes           []NodeSpec        `json:"nodes,omitempty"`
}

// ProjectNodes builds the layout projection of a node collection,
// preserving order.
func ProjectNodes(nodes []topology.Node) []NodeSpec {
	specs := make([]NodeSpec, len(nodes))
	for i, n := range nodes {
		specs[i] = NodeSpec{ID: n.ID, Adjacency: append([]string(nil), n.Adjacency...)}
	}
	return specs
}

// =============================================================================
// Merge - Identity-Preserving Structural Merge
// =============================================================================

// Merge folds next into prev, preserving identity for unchanged parts.
//
// Every sub-structure of the result that is deep-equal to prev's keeps prev's
// reference; if every field is unchanged the result is prev itself. Callers
// can therefore detect a meaningful change with a single pointer comparison,
// which is the trigger for deciding whether to re-run layout.
//
// prev may be nil (first snapshot), in which case next is returned as-is.
func Merge(prev, next *Input) *Input {
	if prev == nil {
		return next
	}
	if next == nil {
		return prev
	}

	merged := *next
	changed := false

	if prev.Width != next.Width || prev.Height != next.Height {
		changed = true
	}
	if prev.Margins != next.Margins {
		changed = true
	}
	if prev.TopologyID != next.TopologyID {
		changed = true
	}
	if prev.ForceRelayout != next.ForceRelayout {
		changed = true
	}

	if optionsEqual(prev.TopologyOptions, next.TopologyOptions) {
		merged.TopologyOptions = prev.TopologyOptions
	} else {
		changed = true
	}

	if specsEqual(prev.Nodes, next.Nodes) {
		merged.Nodes = prev.Nodes
	} else {
		changed = true
	}

	if !changed {
		return prev
	}
	return &merged
}

// optionsEqual treats nil and empty maps as equal: an absent options bag
// carries the same meaning as an empty one.
func optionsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func specsEqual(a, b []NodeSpec) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
		if len(a[i].Adjacency) != len(b[i].Adjacency) {
			return false
		}
		for j := range a[i].Adjacency {
			if a[i].Adjacency[j] != b[i].Adjacency[j] {
				return false
			}
		}
	}
	return true
}
