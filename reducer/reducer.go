// Package reducer maintains a client-side replica of a canvas. Facts from
// the sync gateway and local optimistic changes both funnel through pure
// state transitions, so a replica can be rebuilt or replayed at any time.
package reducer

import (
	"github.com/polemica/polemica/canvas"
	"github.com/polemica/polemica/layout"
	"github.com/polemica/polemica/server"
)

// State is an immutable snapshot of a canvas replica. Every transition
// returns a new State; the input is never mutated.
type State struct {
	Nodes []canvas.Node
	Edges []canvas.Edge
}

// NewState returns an empty replica.
func NewState() State {
	return State{}
}

// WithSnapshot replaces the replica with a server snapshot, as received
// on join. The snapshot wins over any optimistic local state.
func (s State) WithSnapshot(nodes []canvas.Node, edges []canvas.Edge) State {
	return State{
		Nodes: append([]canvas.Node(nil), nodes...),
		Edges: append([]canvas.Edge(nil), edges...),
	}
}

// WithNodeCreated appends a node. A node with the same id may already be
// present when the creation fact echoes a local optimistic insert; the
// existing node is kept.
func (s State) WithNodeCreated(n canvas.Node) State {
	for _, existing := range s.Nodes {
		if existing.ID == n.ID {
			return s
		}
	}
	return State{
		Nodes: append(append([]canvas.Node(nil), s.Nodes...), n),
		Edges: s.Edges,
	}
}

// WithNodeMoved updates a node's position. Moves for unknown nodes are
// dropped; the node was deleted while the fact was in flight.
func (s State) WithNodeMoved(nodeID string, pos canvas.Position) State {
	nodes := append([]canvas.Node(nil), s.Nodes...)
	for i := range nodes {
		if nodes[i].ID == nodeID {
			nodes[i].Position = pos
			return State{Nodes: nodes, Edges: s.Edges}
		}
	}
	return s
}

// WithNodeDeleted removes a node and every edge touching it, mirroring
// the server-side cascade.
func (s State) WithNodeDeleted(nodeID string) State {
	nodes := make([]canvas.Node, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID != nodeID {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == len(s.Nodes) {
		return s
	}
	edges := make([]canvas.Edge, 0, len(s.Edges))
	for _, e := range s.Edges {
		if e.Source != nodeID && e.Target != nodeID {
			edges = append(edges, e)
		}
	}
	return State{Nodes: nodes, Edges: edges}
}

// WithEdgeCreated appends an edge, skipping duplicates by id.
func (s State) WithEdgeCreated(e canvas.Edge) State {
	for _, existing := range s.Edges {
		if existing.ID == e.ID {
			return s
		}
	}
	return State{
		Nodes: s.Nodes,
		Edges: append(append([]canvas.Edge(nil), s.Edges...), e),
	}
}

// WithEnrichment folds an enrichment fact's new nodes and edges into the
// replica. Summary enrichments carry no graph changes and leave the
// state untouched.
func (s State) WithEnrichment(nodes []canvas.Node, edges []canvas.Edge) State {
	out := s
	for _, n := range nodes {
		out = out.WithNodeCreated(n)
	}
	for _, e := range edges {
		out = out.WithEdgeCreated(e)
	}
	return out
}

// WithLayout overwrites positions from a layout fact. Nodes missing from
// the fact keep their current position.
func (s State) WithLayout(laidOut []canvas.Node) State {
	positions := make(map[string]canvas.Position, len(laidOut))
	for _, n := range laidOut {
		positions[n.ID] = n.Position
	}
	nodes := append([]canvas.Node(nil), s.Nodes...)
	for i := range nodes {
		if pos, ok := positions[nodes[i].ID]; ok {
			nodes[i].Position = pos
		}
	}
	return State{Nodes: nodes, Edges: s.Edges}
}

// Apply dispatches a decoded fact message to its transition. Unknown
// message types are ignored so old clients tolerate newer servers.
func (s State) Apply(msg interface{}) State {
	switch m := msg.(type) {
	case server.CanvasStateMessage:
		return s.WithSnapshot(m.Nodes, m.Edges)
	case server.NodeCreatedMessage:
		return s.WithNodeCreated(m.Node)
	case server.NodeMovedMessage:
		return s.WithNodeMoved(m.NodeID, m.Position)
	case server.NodeDeletedMessage:
		return s.WithNodeDeleted(m.NodeID)
	case server.EnrichmentAppliedMessage:
		return s.WithEnrichment(m.NewNodes, m.NewEdges)
	case server.LayoutAppliedMessage:
		return s.WithLayout(m.Nodes)
	default:
		return s
	}
}

// Present builds the renderable view: nodes with non-finite positions are
// hidden, edges are refiltered against the visible node set, and depths
// are annotated for indentation-style rendering.
func (s State) Present() ([]canvas.Node, []canvas.Edge) {
	nodes, edges := canvas.Sanitize(s.Nodes, s.Edges)
	return canvas.AnnotateDepths(nodes, edges), edges
}

// Relayout runs the layered auto-layout locally, for previewing before a
// request_layout intent is sent.
func (s State) Relayout() State {
	nodes, edges := layout.Apply(s.Nodes, s.Edges)
	return State{Nodes: nodes, Edges: edges}
}
