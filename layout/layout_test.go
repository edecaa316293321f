package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polemica/polemica/canvas"
)

func node(id string) canvas.Node {
	return canvas.Node{ID: id, Position: canvas.Position{X: 999, Y: 999}, Data: canvas.NodeData{Label: id}}
}

func positions(nodes []canvas.Node) map[string]canvas.Position {
	out := make(map[string]canvas.Position, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Position
	}
	return out
}

func TestApplyChainStacksVertically(t *testing.T) {
	nodes := []canvas.Node{node("a"), node("b"), node("c")}
	edges := []canvas.Edge{canvas.NewEdge("a", "b"), canvas.NewEdge("b", "c")}

	out, outEdges := Apply(nodes, edges)
	require.Len(t, out, 3)
	assert.Equal(t, edges, outEdges)

	pos := positions(out)
	assert.Equal(t, 0.0, pos["a"].Y)
	assert.Equal(t, NodeHeight+RankSep, pos["b"].Y)
	assert.Equal(t, 2*(NodeHeight+RankSep), pos["c"].Y)

	// Single-node rows are centered on x=0.
	assert.Equal(t, 0.0, pos["a"].X)
	assert.Equal(t, 0.0, pos["b"].X)
	assert.Equal(t, 0.0, pos["c"].X)
}

func TestApplySiblingsSpreadHorizontally(t *testing.T) {
	nodes := []canvas.Node{node("root"), node("l"), node("r")}
	edges := []canvas.Edge{canvas.NewEdge("root", "l"), canvas.NewEdge("root", "r")}

	out, _ := Apply(nodes, edges)
	pos := positions(out)

	assert.Equal(t, 0.0, pos["root"].Y)
	assert.Equal(t, NodeHeight+RankSep, pos["l"].Y)
	assert.Equal(t, NodeHeight+RankSep, pos["r"].Y)

	// Two siblings straddle the parent symmetrically.
	assert.Equal(t, -(NodeWidth+NodeSep)/2, pos["l"].X)
	assert.Equal(t, (NodeWidth+NodeSep)/2, pos["r"].X)
}

func TestApplyDiamondUsesLongestPath(t *testing.T) {
	// a -> b -> d and a -> d: d ranks below b, not beside it.
	nodes := []canvas.Node{node("a"), node("b"), node("d")}
	edges := []canvas.Edge{
		canvas.NewEdge("a", "b"),
		canvas.NewEdge("b", "d"),
		canvas.NewEdge("a", "d"),
	}

	out, _ := Apply(nodes, edges)
	pos := positions(out)

	assert.Equal(t, 2*(NodeHeight+RankSep), pos["d"].Y)
}

func TestApplyPreservesIDsAndData(t *testing.T) {
	nodes := []canvas.Node{node("a"), node("b")}
	nodes[0].Data.Kind = canvas.KindPlain
	edges := []canvas.Edge{canvas.NewEdge("a", "b")}

	out, outEdges := Apply(nodes, edges)

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, canvas.KindPlain, out[0].Data.Kind)
	assert.Len(t, outEdges, 1)
	assert.Equal(t, canvas.EdgeID("a", "b"), outEdges[0].ID)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	nodes := []canvas.Node{node("a")}

	_, _ = Apply(nodes, nil)

	assert.Equal(t, 999.0, nodes[0].Position.X)
}

func TestApplyCycleTerminates(t *testing.T) {
	nodes := []canvas.Node{node("a"), node("b")}
	edges := []canvas.Edge{canvas.NewEdge("a", "b"), canvas.NewEdge("b", "a")}

	out, _ := Apply(nodes, edges)
	pos := positions(out)

	// Cycle members settle on rank 0 rather than hanging the sweep.
	assert.Equal(t, 0.0, pos["a"].Y)
	assert.Equal(t, 0.0, pos["b"].Y)
}

func TestApplyIgnoresDanglingEdges(t *testing.T) {
	nodes := []canvas.Node{node("a")}
	edges := []canvas.Edge{canvas.NewEdge("a", "ghost")}

	out, _ := Apply(nodes, edges)
	assert.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].Position.Y)
}

func TestApplyEmptyGraph(t *testing.T) {
	out, outEdges := Apply(nil, nil)
	assert.Empty(t, out)
	assert.Empty(t, outEdges)
}
