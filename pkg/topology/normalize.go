package topology

// Normalize projects raw input nodes into the engine's internal shape and
// rebuilds the edge collection from adjacency lists.
//
// Node order is preserved from the input for determinism. Edges are built by
// walking each node's adjacency list in order; a candidate edge is kept only
// if no edge with the same derived id exists yet and both endpoints are
// present in the node collection. Adjacency entries referencing unknown ids
// are dropped silently - a malformed edge is not fatal.
//
// A reciprocal pair of directed entries (A lists B and B lists A) yields two
// distinct edges; only identical source→target pairs collapse.
func Normalize(raw []Node) ([]Node, []Edge) {
	nodes := CloneNodes(raw)

	ids := make(map[string]struct{}, len(nodes))
	for i := range nodes {
		ids[nodes[i].ID] = struct{}{}
	}

	var edges []Edge
	seen := make(map[string]struct{})
	for i := range nodes {
		src := nodes[i].ID
		for _, adj := range nodes[i].Adjacency {
			id := EdgeID(src, adj)
			if _, dup := seen[id]; dup {
				continue
			}
			if _, ok := ids[adj]; !ok {
				continue
			}
			seen[id] = struct{}{}
			edges = append(edges, Edge{
				ID:     id,
				Source: src,
				Target: adj,
				Value:  1,
			})
		}
	}

	return nodes, edges
}
