package canvas

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDropsNonFiniteNodes(t *testing.T) {
	nodes := []Node{
		{ID: "ok", Position: Position{X: 10, Y: 20}},
		{ID: "nan", Position: Position{X: math.NaN(), Y: 0}},
		{ID: "inf", Position: Position{X: 0, Y: math.Inf(1)}},
	}
	edges := []Edge{
		NewEdge("ok", "nan"),
		NewEdge("nan", "inf"),
	}

	cleanNodes, cleanEdges := Sanitize(nodes, edges)

	assert.Len(t, cleanNodes, 1)
	assert.Equal(t, "ok", cleanNodes[0].ID)
	assert.Empty(t, cleanEdges)
}

func TestSanitizeKeepsEdgesBetweenSurvivors(t *testing.T) {
	nodes := []Node{
		{ID: "a", Position: Position{X: 1, Y: 1}},
		{ID: "b", Position: Position{X: 2, Y: 2}},
	}
	edges := []Edge{NewEdge("a", "b")}

	cleanNodes, cleanEdges := Sanitize(nodes, edges)

	assert.Len(t, cleanNodes, 2)
	assert.Len(t, cleanEdges, 1)
}

func TestFilterEdgesDropsDangling(t *testing.T) {
	ids := map[string]struct{}{"a": {}, "b": {}}
	edges := []Edge{
		NewEdge("a", "b"),
		NewEdge("a", "gone"),
		NewEdge("gone", "b"),
	}

	kept := FilterEdges(edges, ids)

	assert.Len(t, kept, 1)
	assert.Equal(t, EdgeID("a", "b"), kept[0].ID)
}

func TestDedupNodesKeepsFirst(t *testing.T) {
	nodes := []Node{
		{ID: "a", Data: NodeData{Label: "first"}},
		{ID: "b"},
		{ID: "a", Data: NodeData{Label: "second"}},
	}

	out := DedupNodes(nodes)

	assert.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Data.Label)
}

func TestEdgeIDDeterministic(t *testing.T) {
	assert.Equal(t, "edge-x-y", EdgeID("x", "y"))
	assert.Equal(t, NewEdge("x", "y").ID, EdgeID("x", "y"))
}

func TestPositionJSONRoundTrip(t *testing.T) {
	raw, err := json.Marshal(Position{X: math.NaN(), Y: 7})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"x": null, "y": 7}`, string(raw))

	var p Position
	assert.NoError(t, json.Unmarshal(raw, &p))
	assert.True(t, math.IsNaN(p.X))
	assert.Equal(t, 7.0, p.Y)
}

func TestPositionFinite(t *testing.T) {
	assert.True(t, Position{X: 0, Y: -5.5}.Finite())
	assert.False(t, Position{X: math.NaN(), Y: 0}.Finite())
	assert.False(t, Position{X: 0, Y: math.Inf(-1)}.Finite())
}
