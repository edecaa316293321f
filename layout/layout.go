// Package layout arranges a canvas graph into a top-down layered drawing.
// Ranks follow edge direction, siblings within a rank are ordered by the
// barycenter of their neighbors, and final coordinates are spaced on a
// fixed grid so an auto-layout produces stable, readable output.
package layout

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/polemica/polemica/canvas"
)

// Geometry of the layered grid. Node boxes are assumed uniform.
const (
	NodeWidth  = 250.0
	NodeHeight = 200.0
	NodeSep    = 200.0 // horizontal gap between siblings
	RankSep    = 150.0 // vertical gap between ranks
)

// Apply returns a copy of nodes with positions assigned by the layered
// layout. Node order, ids and data are preserved; only Position changes.
// Edges are returned untouched so callers can treat Apply as a drop-in
// replacement for the current graph state.
func Apply(nodes []canvas.Node, edges []canvas.Edge) ([]canvas.Node, []canvas.Edge) {
	if len(nodes) == 0 {
		return nodes, edges
	}

	g, byID, byIndex := buildGraph(nodes, edges)
	ranks := assignRanks(g, byIndex)
	rows := orderRows(g, byID, byIndex, ranks)

	positions := make(map[string]canvas.Position, len(nodes))
	for rank, row := range rows {
		offset := float64(len(row)-1) / 2
		for i, id := range row {
			positions[id] = canvas.Position{
				X: (float64(i) - offset) * (NodeWidth + NodeSep),
				Y: float64(rank) * (NodeHeight + RankSep),
			}
		}
	}

	out := make([]canvas.Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		out[i].Position = positions[out[i].ID]
	}
	return out, edges
}

// buildGraph maps canvas ids onto gonum's int64 node ids. Duplicate and
// dangling edges are skipped so a slightly inconsistent input cannot
// panic the grapher.
func buildGraph(nodes []canvas.Node, edges []canvas.Edge) (*simple.DirectedGraph, map[string]int64, []string) {
	g := simple.NewDirectedGraph()
	byID := make(map[string]int64, len(nodes))
	byIndex := make([]string, len(nodes))
	for i, n := range nodes {
		id := int64(i)
		byID[n.ID] = id
		byIndex[i] = n.ID
		g.AddNode(simple.Node(id))
	}
	for _, e := range edges {
		from, ok := byID[e.Source]
		if !ok {
			continue
		}
		to, ok := byID[e.Target]
		if !ok || from == to {
			continue
		}
		if g.HasEdgeFromTo(from, to) {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}
	return g, byID, byIndex
}

// assignRanks computes longest-path ranks with Kahn's algorithm: a node's
// rank is one more than the deepest of its settled parents. Nodes caught
// in cycles never reach in-degree zero and stay at rank 0, which keeps
// the layout total even for malformed graphs.
func assignRanks(g *simple.DirectedGraph, byIndex []string) []int {
	n := len(byIndex)
	ranks := make([]int, n)
	indeg := make([]int, n)
	for i := 0; i < n; i++ {
		indeg[i] = g.To(int64(i)).Len()
	}

	queue := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, int64(i))
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		it := g.From(cur)
		for it.Next() {
			child := it.Node().ID()
			if r := ranks[cur] + 1; r > ranks[child] {
				ranks[child] = r
			}
			indeg[child]--
			if indeg[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}

// orderRows groups nodes by rank and runs a single downward barycenter
// sweep: each row after the first is sorted by the mean position of its
// parents in the row above, which untangles most crossings without the
// cost of full iterative refinement.
func orderRows(g *simple.DirectedGraph, byID map[string]int64, byIndex []string, ranks []int) [][]string {
	maxRank := 0
	for _, r := range ranks {
		if r > maxRank {
			maxRank = r
		}
	}
	rows := make([][]string, maxRank+1)
	for i, id := range byIndex {
		rows[ranks[i]] = append(rows[ranks[i]], id)
	}

	pos := make(map[string]int)
	for i, id := range rows[0] {
		pos[id] = i
	}

	for rank := 1; rank <= maxRank; rank++ {
		row := rows[rank]
		bary := make(map[string]float64, len(row))
		for _, id := range row {
			it := g.To(byID[id])
			sum, count := 0.0, 0
			for it.Next() {
				parent := byIndex[it.Node().ID()]
				if p, ok := pos[parent]; ok {
					sum += float64(p)
					count++
				}
			}
			if count > 0 {
				bary[id] = sum / float64(count)
			}
		}
		sort.SliceStable(row, func(i, j int) bool {
			return bary[row[i]] < bary[row[j]]
		})
		pos = make(map[string]int, len(row))
		for i, id := range row {
			pos[id] = i
		}
	}
	return rows
}
