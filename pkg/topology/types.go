package topology

import "strings"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// EdgeIDSeparator joins source and target ids into a derived edge id.
// "|" is used because node ids routinely contain "-" and ";".
const EdgeIDSeparator = "|"

// Node shapes understood by renderers.
const (
	ShapeCircle   = "circle"
	ShapeSquare   = "square"
	ShapeHexagon  = "hexagon"
	ShapeHeptagon = "heptagon"
	ShapeCloud    = "cloud"
)

// =============================================================================
// Point - 2D Coordinate
// =============================================================================

// Point is a position in graph space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// =============================================================================
// Node - Unified Node Type
// =============================================================================

// Node is the engine's node shape. Display metadata (label, metrics, shape)
// and layout coordinates are merged from two independently-updated sources:
// the input snapshot provider and the layout engine. Identity is by ID.
//
// X/Y hold the current position; PX/PY hold the position captured before the
// current focus arrangement so that leaving focus mode can restore it.
type Node struct {
	ID        string   `json:"id"`
	Label     string   `json:"label,omitempty"`
	SubLabel  string   `json:"subLabel,omitempty"`
	Pseudo    bool     `json:"pseudo,omitempty"`
	NodeCount int      `json:"nodeCount,omitempty"`
	Metrics   []Metric `json:"metrics,omitempty"`
	Rank      string   `json:"rank,omitempty"`
	Shape     string   `json:"shape,omitempty"`
	Stack     bool     `json:"stack,omitempty"`
	Networks  []string `json:"networks,omitempty"`

	// Adjacency lists the ids of adjacent nodes, in input order.
	Adjacency []string `json:"adjacency,omitempty"`

	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	PX float64 `json:"px,omitempty"`
	PY float64 `json:"py,omitempty"`
}

// Metric is opaque display metadata attached to a node.
type Metric struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	Format string  `json:"format,omitempty"`
	Value  float64 `json:"value"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Derived Connection
// =============================================================================

// Edge connects two nodes. Its id is derived from the endpoints and never
// assigned independently. Edges are directional as stored (source = owner of
// the adjacency entry) but intended for undirected rendering.
//
// Points holds the current polyline; PPoints the polyline captured before the
// current focus arrangement.
type Edge struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Value   float64 `json:"value"`
	Points  []Point `json:"points,omitempty"`
	PPoints []Point `json:"ppoints,omitempty"`
}

// EdgeID derives the canonical edge id for a source→target pair.
func EdgeID(source, target string) string {
	return source + EdgeIDSeparator + target
}

// SplitEdgeID recovers the endpoints from a derived edge id.
// The boolean is false if id is not a derived edge id.
func SplitEdgeID(id string) (source, target string, ok bool) {
	source, target, ok = strings.Cut(id, EdgeIDSeparator)
	return
}

// Touches reports whether the edge has id as either endpoint.
func (e *Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// =============================================================================
// Collections
// =============================================================================

// NodeIndex builds an id → slice-index lookup for a node collection.
func NodeIndex(nodes []Node) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}

// NodeByID returns a pointer to the node with the given id, or nil.
func NodeByID(nodes []Node, id string) *Node {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i]
		}
	}
	return nil
}

// CloneNodes returns a deep copy of a node collection. Adjacency, metric and
// network slices are copied so callers can mutate the result freely.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Adjacency = append([]string(nil), n.Adjacency...)
		out[i].Metrics = append([]Metric(nil), n.Metrics...)
		out[i].Networks = append([]string(nil), n.Networks...)
	}
	return out
}

// CloneEdges returns a deep copy of an edge collection, including polylines.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e
		out[i].Points = append([]Point(nil), e.Points...)
		out[i].PPoints = append([]Point(nil), e.PPoints...)
	}
	return out
}
