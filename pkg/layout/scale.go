package layout

import "math"

// =============================================================================
// Node Size Scale
// =============================================================================

// Default node size bounds in graph-space pixels. Overridable via
// [SizeLimits] for callers that load tuning from configuration.
const (
	DefaultMinNodeSize = 10
	DefaultMaxNodeSize = 100
)

// SizeLimits bounds the node size scale.
type SizeLimits struct {
	Min float64 `toml:"min_node_size" json:"minNodeSize"`
	Max float64 `toml:"max_node_size" json:"maxNodeSize"`
}

// DefaultSizeLimits returns the built-in node size bounds.
func DefaultSizeLimits() SizeLimits {
	return SizeLimits{Min: DefaultMinNodeSize, Max: DefaultMaxNodeSize}
}

// Scale maps a node's own count to a rendered size. The range is [0, Max];
// size grows with the square root of the count so large aggregates do not
// dwarf the rest of the graph.
type Scale struct {
	domainMax float64
	rangeMax  float64
}

// NewNodeScale computes the size scale for a graph of nodeCount nodes inside
// a width×height viewport, using the default size limits.
//
// One node should visually fill about a third of the shorter viewport
// dimension; with more nodes the per-node budget shrinks by sqrt(count), and
// the result is capped so a node never exceeds a tenth of the viewport (or
// the absolute maximum, whichever is smaller).
func NewNodeScale(nodeCount int, width, height float64) Scale {
	return NewNodeScaleWithLimits(nodeCount, width, height, DefaultSizeLimits())
}

// NewNodeScaleWithLimits is NewNodeScale with explicit size bounds.
func NewNodeScaleWithLimits(nodeCount int, width, height float64, lim SizeLimits) Scale {
	if nodeCount < 1 {
		nodeCount = 1
	}
	expanse := math.Min(width, height)
	targetSize := expanse / 3
	capSize := math.Min(lim.Max, expanse/10)
	rangeMax := math.Max(lim.Min, math.Min(targetSize/math.Sqrt(float64(nodeCount)), capSize))
	return Scale{domainMax: float64(nodeCount), rangeMax: rangeMax}
}

// Size maps a count in [0, domain] to a size in [0, Max].
func (s Scale) Size(count float64) float64 {
	if count <= 0 || s.domainMax <= 0 {
		return 0
	}
	if count >= s.domainMax {
		return s.rangeMax
	}
	return s.rangeMax * math.Sqrt(count/s.domainMax)
}

// Max returns the upper bound of the scale's range.
func (s Scale) Max() float64 { return s.rangeMax }
