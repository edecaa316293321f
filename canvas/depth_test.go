package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func node(id string) Node {
	return Node{ID: id, Position: Position{X: 0, Y: 0}, Data: NodeData{Label: id}}
}

func TestResolveDepthsChain(t *testing.T) {
	nodes := []Node{node("a"), node("b"), node("c")}
	edges := []Edge{NewEdge("a", "b"), NewEdge("b", "c")}

	depths := ResolveDepths(nodes, edges)

	assert.Equal(t, 0, depths["a"])
	assert.Equal(t, 1, depths["b"])
	assert.Equal(t, 2, depths["c"])
}

func TestResolveDepthsMultipleRoots(t *testing.T) {
	// Two roots converge on the same node. Both paths reach "shared" at
	// depth 1, and the first settled value wins.
	nodes := []Node{node("r1"), node("r2"), node("shared"), node("leaf")}
	edges := []Edge{
		NewEdge("r1", "shared"),
		NewEdge("r2", "shared"),
		NewEdge("shared", "leaf"),
	}

	depths := ResolveDepths(nodes, edges)

	assert.Equal(t, 0, depths["r1"])
	assert.Equal(t, 0, depths["r2"])
	assert.Equal(t, 1, depths["shared"])
	assert.Equal(t, 2, depths["leaf"])
}

func TestResolveDepthsShorterPathWins(t *testing.T) {
	// "x" is reachable at depth 1 directly and at depth 2 via "mid". BFS
	// settles the shorter distance first.
	nodes := []Node{node("root"), node("mid"), node("x")}
	edges := []Edge{
		NewEdge("root", "mid"),
		NewEdge("root", "x"),
		NewEdge("mid", "x"),
	}

	depths := ResolveDepths(nodes, edges)

	assert.Equal(t, 1, depths["x"])
}

func TestResolveDepthsCycleWithEntry(t *testing.T) {
	// A cycle reachable from a root must not loop forever; each member is
	// settled once at its first-visit distance.
	nodes := []Node{node("root"), node("a"), node("b"), node("c")}
	edges := []Edge{
		NewEdge("root", "a"),
		NewEdge("a", "b"),
		NewEdge("b", "c"),
		NewEdge("c", "a"),
	}

	depths := ResolveDepths(nodes, edges)

	assert.Equal(t, 0, depths["root"])
	assert.Equal(t, 1, depths["a"])
	assert.Equal(t, 2, depths["b"])
	assert.Equal(t, 3, depths["c"])
}

func TestResolveDepthsDetachedCycleDefaultsToZero(t *testing.T) {
	// Every node in the cycle has an incoming edge, so there is no root to
	// reach it from. Unreachable nodes fall back to depth 0.
	nodes := []Node{node("a"), node("b")}
	edges := []Edge{NewEdge("a", "b"), NewEdge("b", "a")}

	depths := ResolveDepths(nodes, edges)

	assert.Equal(t, 0, depths["a"])
	assert.Equal(t, 0, depths["b"])
}

func TestResolveDepthsIgnoresDanglingEdges(t *testing.T) {
	// An edge pointing at "b" from a node that no longer exists must not
	// demote "b" from root status.
	nodes := []Node{node("b")}
	edges := []Edge{NewEdge("ghost", "b")}

	depths := ResolveDepths(nodes, edges)

	assert.Equal(t, 0, depths["b"])
}

func TestResolveDepthsEmptyGraph(t *testing.T) {
	depths := ResolveDepths(nil, nil)
	assert.Empty(t, depths)
}

func TestAnnotateDepthsDoesNotMutateInput(t *testing.T) {
	nodes := []Node{node("a"), node("b")}
	edges := []Edge{NewEdge("a", "b")}

	out := AnnotateDepths(nodes, edges)

	assert.Equal(t, 0, nodes[1].Data.Depth)
	assert.Equal(t, 1, out[1].Data.Depth)
}
