package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/polemica/polemica/canvas"
	"github.com/polemica/polemica/errors"
	"github.com/polemica/polemica/layout"
)

// Placement of AI-generated nodes relative to their parent claim
const (
	enrichmentOffsetY = 250.0
	enrichmentOffsetX = 300.0
)

// handleJoinCanvas moves the client into a canvas room and sends it the
// full persisted snapshot so it can hydrate before facts start arriving.
func (s *CanvasServer) handleJoinCanvas(c *Client, msg *IntentMessage) {
	if msg.CanvasID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "join_canvas requires canvas_id"})
		return
	}

	ctx := s.ctx
	if _, err := s.store.GetCanvas(ctx, msg.CanvasID); err != nil {
		if errors.IsNotFoundError(err) {
			c.enqueue(ErrorMessage{Type: "error", Message: fmt.Sprintf("canvas %s not found", msg.CanvasID)})
			return
		}
		s.logger.Errorw("Failed to load canvas", "canvas_id", msg.CanvasID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to load canvas"})
		return
	}

	s.rooms.Join(msg.CanvasID, c)

	nodes, err := s.store.ListNodes(ctx, msg.CanvasID)
	if err != nil {
		s.logger.Errorw("Failed to list nodes", "canvas_id", msg.CanvasID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to load canvas"})
		return
	}
	edges, err := s.store.ListEdges(ctx, msg.CanvasID)
	if err != nil {
		s.logger.Errorw("Failed to list edges", "canvas_id", msg.CanvasID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to load canvas"})
		return
	}

	c.enqueue(CanvasStateMessage{Type: "canvas_state", Nodes: nodes, Edges: edges})
}

// handleLeaveCanvas removes the client from its current room
func (s *CanvasServer) handleLeaveCanvas(c *Client) {
	s.rooms.Leave(c)
}

// handleCreateNode persists a new node and broadcasts the fact to every
// other room member. The sender already applied the node optimistically,
// so it is excluded from the broadcast.
func (s *CanvasServer) handleCreateNode(c *Client, msg *IntentMessage) {
	if c.canvasID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "join a canvas first"})
		return
	}
	if msg.Label == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "create_node requires label"})
		return
	}

	kind := msg.Kind
	if kind == "" {
		kind = canvas.KindPlain
	}

	// Clients that applied the node optimistically send their own id; the
	// server only mints one when the intent arrives without it.
	id := msg.NodeID
	echo := false
	if id == "" {
		id = uuid.NewString()
		echo = true
	}

	node := canvas.Node{
		ID:       id,
		Position: canvas.Position{X: msg.X, Y: msg.Y},
		Data:     canvas.NodeData{Label: msg.Label, Kind: kind},
	}

	if err := s.store.CreateNode(s.ctx, c.canvasID, node); err != nil {
		s.logger.Errorw("Failed to create node", "canvas_id", c.canvasID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to create node"})
		return
	}

	if echo {
		c.enqueue(NodeCreatedMessage{Type: "node_created", Node: node})
	}
	s.rooms.Broadcast(c.canvasID, NodeCreatedMessage{Type: "node_created", Node: node}, c)
}

// handleMoveNode persists a position change and broadcasts it, excluding
// the sender. Concurrent moves of the same node resolve last-write-wins.
func (s *CanvasServer) handleMoveNode(c *Client, msg *IntentMessage) {
	if c.canvasID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "join a canvas first"})
		return
	}
	if msg.NodeID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "move_node requires node_id"})
		return
	}

	pos := canvas.Position{X: msg.X, Y: msg.Y}
	if err := s.store.UpdatePosition(s.ctx, c.canvasID, msg.NodeID, pos); err != nil {
		if errors.IsNotFoundError(err) {
			// Node deleted out from under a concurrent drag; drop silently
			s.logger.Debugw("Move for missing node ignored", "node_id", msg.NodeID)
			return
		}
		s.logger.Errorw("Failed to move node", "node_id", msg.NodeID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to move node"})
		return
	}

	s.rooms.Broadcast(c.canvasID, NodeMovedMessage{
		Type:     "node_moved",
		NodeID:   msg.NodeID,
		Position: pos,
	}, c)
}

// handleDeleteNode removes a node and broadcasts the fact to the whole
// room, sender included, so every replica runs the identical cascade.
func (s *CanvasServer) handleDeleteNode(c *Client, msg *IntentMessage) {
	if c.canvasID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "join a canvas first"})
		return
	}
	if msg.NodeID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "delete_node requires node_id"})
		return
	}

	if err := s.store.DeleteNode(s.ctx, c.canvasID, msg.NodeID); err != nil {
		if errors.IsNotFoundError(err) {
			// Already deleted by a concurrent client; the fact was broadcast then
			return
		}
		s.logger.Errorw("Failed to delete node", "node_id", msg.NodeID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to delete node"})
		return
	}

	s.rooms.Broadcast(c.canvasID, NodeDeletedMessage{Type: "node_deleted", NodeID: msg.NodeID}, nil)
}

// handleRequestEnrichment validates the request and runs the AI call in
// the background; enrichment must never block the read pump.
func (s *CanvasServer) handleRequestEnrichment(c *Client, msg *IntentMessage) {
	if c.canvasID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "join a canvas first"})
		return
	}
	switch msg.Kind {
	case EnrichQuestion, EnrichEvidence, EnrichSummary:
	default:
		c.enqueue(ErrorMessage{Type: "error", Message: fmt.Sprintf("unknown enrichment kind %q", msg.Kind)})
		return
	}
	if msg.Kind != EnrichSummary && msg.NodeID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "request_enrichment requires node_id"})
		return
	}

	canvasID := c.canvasID
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runEnrichment(c, canvasID, msg.Kind, msg.NodeID)
	}()
}

// runEnrichment executes one enrichment request end to end. Results are
// persisted before the applied fact is broadcast; failures go back to the
// requester only.
func (s *CanvasServer) runEnrichment(c *Client, canvasID, kind, nodeID string) {
	ctx := s.ctx

	var (
		newNodes []canvas.Node
		newEdges []canvas.Edge
		summary  string
		err      error
	)

	switch kind {
	case EnrichQuestion:
		newNodes, newEdges, err = s.enrichQuestion(ctx, canvasID, nodeID)
	case EnrichEvidence:
		newNodes, newEdges, err = s.enrichEvidence(ctx, canvasID, nodeID)
	case EnrichSummary:
		summary, err = s.enrichSummary(ctx, canvasID)
	}

	if err != nil {
		reason := "error"
		message := "Could not process AI request."
		switch {
		case errors.IsRateLimitedError(err):
			reason = "rate_limited"
			message = "AI rate limit reached. Please try again in a minute."
		case errors.Is(err, errors.ErrTimeout):
			reason = "timeout"
			message = "AI request timed out. Please try again."
		}
		s.logger.Warnw("Enrichment failed",
			"canvas_id", canvasID,
			"kind", kind,
			"reason", reason,
			"error", err,
		)
		c.enqueue(EnrichmentFailedMessage{
			Type:    "enrichment_failed",
			Kind:    kind,
			NodeID:  nodeID,
			Reason:  reason,
			Message: message,
		})
		return
	}

	s.rooms.Broadcast(canvasID, EnrichmentAppliedMessage{
		Type:     "enrichment_applied",
		Kind:     kind,
		NodeID:   nodeID,
		NewNodes: newNodes,
		NewEdges: newEdges,
		Summary:  summary,
	}, nil)
}

// enrichQuestion generates a probing question for a claim and persists it
// as a question node below the parent, linked by an edge.
func (s *CanvasServer) enrichQuestion(ctx context.Context, canvasID, nodeID string) ([]canvas.Node, []canvas.Edge, error) {
	parent, err := s.findNode(ctx, canvasID, nodeID)
	if err != nil {
		return nil, nil, err
	}

	question, err := s.getEnricher().GenerateQuestion(ctx, parent.Data.Label)
	if err != nil {
		return nil, nil, err
	}

	node := canvas.Node{
		ID: uuid.NewString(),
		Position: canvas.Position{
			X: parent.Position.X,
			Y: parent.Position.Y + enrichmentOffsetY,
		},
		Data: canvas.NodeData{
			Label: "AI Question: " + question,
			Kind:  canvas.KindQuestion,
		},
	}
	edge := canvas.NewEdge(parent.ID, node.ID)
	edge.Animated = true

	if err := s.store.CreateNode(ctx, canvasID, node); err != nil {
		return nil, nil, err
	}
	if err := s.store.CreateEdge(ctx, canvasID, edge); err != nil {
		// Node already landed; surface the partial write rather than hide it
		return nil, nil, errors.Wrap(err, "question node persisted without edge")
	}

	return []canvas.Node{node}, []canvas.Edge{edge}, nil
}

// enrichEvidence fetches sourced evidence for a claim and persists one
// node per source, fanned out beneath the parent.
func (s *CanvasServer) enrichEvidence(ctx context.Context, canvasID, nodeID string) ([]canvas.Node, []canvas.Edge, error) {
	parent, err := s.findNode(ctx, canvasID, nodeID)
	if err != nil {
		return nil, nil, err
	}

	evidence, err := s.getEnricher().FindEvidence(ctx, parent.Data.Label)
	if err != nil {
		return nil, nil, err
	}
	if len(evidence) == 0 {
		return nil, nil, errors.New("no evidence found")
	}

	offset := float64(len(evidence)-1) / 2
	nodes := make([]canvas.Node, 0, len(evidence))
	edges := make([]canvas.Edge, 0, len(evidence))
	for i, ev := range evidence {
		node := canvas.Node{
			ID: uuid.NewString(),
			Position: canvas.Position{
				X: parent.Position.X + (float64(i)-offset)*enrichmentOffsetX,
				Y: parent.Position.Y + enrichmentOffsetY,
			},
			Data: canvas.NodeData{
				Label: ev.Summary,
				URL:   ev.URL,
				Kind:  canvas.KindEvidence,
			},
		}
		edge := canvas.NewEdge(parent.ID, node.ID)

		if err := s.store.CreateNode(ctx, canvasID, node); err != nil {
			return nil, nil, err
		}
		if err := s.store.CreateEdge(ctx, canvasID, edge); err != nil {
			return nil, nil, errors.Wrap(err, "evidence node persisted without edge")
		}
		nodes = append(nodes, node)
		edges = append(edges, edge)
	}

	return nodes, edges, nil
}

// enrichSummary condenses the whole canvas into a short summary. Nothing
// is persisted; the summary lives only in the broadcast fact.
func (s *CanvasServer) enrichSummary(ctx context.Context, canvasID string) (string, error) {
	nodes, err := s.store.ListNodes(ctx, canvasID)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", errors.New("nothing to summarize")
	}

	claims := make([]string, 0, len(nodes))
	for _, n := range nodes {
		claims = append(claims, n.Data.Label)
	}
	return s.getEnricher().Summarize(ctx, claims)
}

// handleRequestLayout recomputes every position with the layered layout,
// persists the batch, and broadcasts the result to the whole room.
func (s *CanvasServer) handleRequestLayout(c *Client, msg *IntentMessage) {
	if c.canvasID == "" {
		c.enqueue(ErrorMessage{Type: "error", Message: "join a canvas first"})
		return
	}
	canvasID := c.canvasID

	nodes, err := s.store.ListNodes(s.ctx, canvasID)
	if err != nil {
		s.logger.Errorw("Failed to list nodes for layout", "canvas_id", canvasID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to compute layout"})
		return
	}
	edges, err := s.store.ListEdges(s.ctx, canvasID)
	if err != nil {
		s.logger.Errorw("Failed to list edges for layout", "canvas_id", canvasID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to compute layout"})
		return
	}

	laidOut, _ := layout.Apply(nodes, edges)
	if err := s.store.UpdatePositions(s.ctx, canvasID, laidOut); err != nil {
		s.logger.Errorw("Failed to persist layout", "canvas_id", canvasID, "error", err)
		c.enqueue(ErrorMessage{Type: "error", Message: "failed to persist layout"})
		return
	}

	s.rooms.Broadcast(canvasID, LayoutAppliedMessage{Type: "layout_applied", Nodes: laidOut}, nil)
}

// findNode loads a single node off a canvas
func (s *CanvasServer) findNode(ctx context.Context, canvasID, nodeID string) (canvas.Node, error) {
	nodes, err := s.store.ListNodes(ctx, canvasID)
	if err != nil {
		return canvas.Node{}, err
	}
	for _, n := range nodes {
		if n.ID == nodeID {
			return n, nil
		}
	}
	return canvas.Node{}, errors.NewNotFoundError("node %s", nodeID)
}
