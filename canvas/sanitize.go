package canvas

// Sanitize filters a raw node/edge set down to what is renderable: nodes
// with finite coordinates, and edges whose endpoints both survive the
// node filter. Input slices are not mutated.
func Sanitize(nodes []Node, edges []Edge) ([]Node, []Edge) {
	clean := make([]Node, 0, len(nodes))
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if !n.Position.Finite() {
			continue
		}
		clean = append(clean, n)
		ids[n.ID] = struct{}{}
	}
	return clean, FilterEdges(edges, ids)
}

// FilterEdges drops edges whose source or target is not in the given id set.
func FilterEdges(edges []Edge, ids map[string]struct{}) []Edge {
	kept := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// NodeIDSet collects the ids of a node slice.
func NodeIDSet(nodes []Node) map[string]struct{} {
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// DedupNodes removes later duplicates of the same node id, keeping the
// first occurrence. Used when applying remote creation facts that may
// race a local optimistic insert.
func DedupNodes(nodes []Node) []Node {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}
