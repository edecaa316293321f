package canvas

// ResolveDepths computes the depth of every node as its BFS distance from
// the nearest root, where a root is any node with no incoming edge. All
// roots are seeded at depth 0 and expanded in a single multi-source pass,
// so when several roots reach the same node the first settled depth wins.
// Nodes unreachable from any root (members of cycles with no entry point)
// default to depth 0.
//
// Only edges with both endpoints present contribute; dangling references
// are ignored rather than treated as incoming links.
func ResolveDepths(nodes []Node, edges []Edge) map[string]int {
	ids := NodeIDSet(nodes)

	hasIncoming := make(map[string]bool, len(nodes))
	children := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		hasIncoming[e.Target] = true
		children[e.Source] = append(children[e.Source], e.Target)
	}

	depths := make(map[string]int, len(nodes))

	type item struct {
		id    string
		depth int
	}
	queue := make([]item, 0, len(nodes))
	for _, n := range nodes {
		if !hasIncoming[n.ID] {
			depths[n.ID] = 0
			queue = append(queue, item{n.ID, 0})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur.id] {
			if _, settled := depths[child]; settled {
				continue
			}
			depths[child] = cur.depth + 1
			queue = append(queue, item{child, cur.depth + 1})
		}
	}

	for _, n := range nodes {
		if _, ok := depths[n.ID]; !ok {
			depths[n.ID] = 0
		}
	}
	return depths
}

// AnnotateDepths returns a copy of nodes with Data.Depth filled in from
// ResolveDepths.
func AnnotateDepths(nodes []Node, edges []Edge) []Node {
	depths := ResolveDepths(nodes, edges)
	out := make([]Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		out[i].Data.Depth = depths[out[i].ID]
	}
	return out
}
