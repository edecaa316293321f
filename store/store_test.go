package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polemica/polemica/canvas"
	"github.com/polemica/polemica/errors"
	ptesting "github.com/polemica/polemica/internal/testing"
)

func newTestStore(t *testing.T) (*GraphStore, canvas.Canvas) {
	t.Helper()
	s := NewGraphStore(ptesting.CreateTestDB(t))
	c, err := s.CreateCanvas(context.Background(), "test debate")
	require.NoError(t, err)
	return s, c
}

func TestCreateAndListNodes(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	n := canvas.Node{
		ID:       "n1",
		Position: canvas.Position{X: 100, Y: 50},
		Data:     canvas.NodeData{Label: "claim one", Kind: canvas.KindPlain},
	}
	require.NoError(t, s.CreateNode(ctx, c.ID, n))

	nodes, err := s.ListNodes(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].ID)
	assert.Equal(t, "claim one", nodes[0].Data.Label)
	assert.Equal(t, 100.0, nodes[0].Position.X)
}

func TestCreateNodeIdempotent(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	n := canvas.Node{ID: "n1", Position: canvas.Position{X: 1, Y: 2}, Data: canvas.NodeData{Label: "original"}}
	require.NoError(t, s.CreateNode(ctx, c.ID, n))

	// Replaying the same creation keeps the first write.
	n.Data.Label = "replayed"
	require.NoError(t, s.CreateNode(ctx, c.ID, n))

	nodes, err := s.ListNodes(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "original", nodes[0].Data.Label)
}

func TestNonFinitePositionsRoundTripAsNaN(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	n := canvas.Node{ID: "n1", Position: canvas.Position{X: math.NaN(), Y: math.Inf(1)}}
	require.NoError(t, s.CreateNode(ctx, c.ID, n))

	nodes, err := s.ListNodes(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.True(t, math.IsNaN(nodes[0].Position.X))
	assert.True(t, math.IsNaN(nodes[0].Position.Y))
	assert.False(t, nodes[0].Position.Finite())
}

func TestUpdatePosition(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "n1"}))
	require.NoError(t, s.UpdatePosition(ctx, c.ID, "n1", canvas.Position{X: 5, Y: -7}))

	nodes, err := s.ListNodes(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, canvas.Position{X: 5, Y: -7}, nodes[0].Position)
}

func TestUpdatePositionMissingNode(t *testing.T) {
	s, c := newTestStore(t)

	err := s.UpdatePosition(context.Background(), c.ID, "ghost", canvas.Position{})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDeleteNodeCascadesEdges(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "a"}))
	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "b"}))
	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "c"}))
	require.NoError(t, s.CreateEdge(ctx, c.ID, canvas.NewEdge("a", "b")))
	require.NoError(t, s.CreateEdge(ctx, c.ID, canvas.NewEdge("b", "c")))

	require.NoError(t, s.DeleteNode(ctx, c.ID, "b"))

	nodes, err := s.ListNodes(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	edges, err := s.ListEdges(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestCreateEdgeToDeletedNodeSucceeds(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "parent"}))
	require.NoError(t, s.DeleteNode(ctx, c.ID, "parent"))

	// A concurrent delete can race an in-flight enrichment: the new node
	// and its edge still land, and presentation-time filtering hides the
	// dangling edge.
	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "child"}))
	require.NoError(t, s.CreateEdge(ctx, c.ID, canvas.NewEdge("parent", "child")))

	edges, err := s.ListEdges(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "parent", edges[0].Source)

	nodes, err := s.ListNodes(ctx, c.ID)
	require.NoError(t, err)
	visible, visibleEdges := canvas.Sanitize(nodes, edges)
	assert.Len(t, visible, 1)
	assert.Empty(t, visibleEdges)
}

func TestDeleteNodeMissing(t *testing.T) {
	s, c := newTestStore(t)

	err := s.DeleteNode(context.Background(), c.ID, "ghost")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestCreateEdgeIdempotent(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "a"}))
	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "b"}))

	e := canvas.NewEdge("a", "b")
	require.NoError(t, s.CreateEdge(ctx, c.ID, e))
	require.NoError(t, s.CreateEdge(ctx, c.ID, e))

	edges, err := s.ListEdges(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
}

func TestUpdatePositionsBatch(t *testing.T) {
	s, c := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "a"}))
	require.NoError(t, s.CreateNode(ctx, c.ID, canvas.Node{ID: "b"}))

	moved := []canvas.Node{
		{ID: "a", Position: canvas.Position{X: 10, Y: 20}},
		{ID: "b", Position: canvas.Position{X: 30, Y: 40}},
	}
	require.NoError(t, s.UpdatePositions(ctx, c.ID, moved))

	nodes, err := s.ListNodes(ctx, c.ID)
	require.NoError(t, err)
	byID := map[string]canvas.Position{}
	for _, n := range nodes {
		byID[n.ID] = n.Position
	}
	assert.Equal(t, canvas.Position{X: 10, Y: 20}, byID["a"])
	assert.Equal(t, canvas.Position{X: 30, Y: 40}, byID["b"])
}

func TestCanvasLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	c2, err := s.CreateCanvas(ctx, "second")
	require.NoError(t, err)

	got, err := s.GetCanvas(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)

	all, err := s.ListCanvases(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.GetCanvas(ctx, "missing")
	assert.True(t, errors.IsNotFoundError(err))
}
