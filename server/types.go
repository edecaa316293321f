package server

import (
	"time"

	"github.com/polemica/polemica/canvas"
)

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 100
	// MaxClientMessageQueueSize is the size of per-client message queues
	MaxClientMessageQueueSize = 256
	// ShutdownTimeout is how long to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second
)

// Enrichment kinds accepted on request_enrichment intents
const (
	EnrichQuestion = "question"
	EnrichEvidence = "evidence"
	EnrichSummary  = "summary"
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// IntentMessage represents a client intent. Intents request a change; the
// server validates, persists, and answers with fact messages.
type IntentMessage struct {
	Type     string  `json:"type"`      // "join_canvas", "leave_canvas", "create_node", "move_node", "delete_node", "request_enrichment", "request_layout", "ping"
	CanvasID string  `json:"canvas_id"` // Room to operate on
	NodeID   string  `json:"node_id"`   // For move_node, delete_node, request_enrichment
	Label    string  `json:"label"`     // For create_node
	Kind     string  `json:"kind"`      // For create_node ("plain") and request_enrichment ("question", "evidence", "summary")
	X        float64 `json:"x"`         // For create_node, move_node
	Y        float64 `json:"y"`         // For create_node, move_node
}

// NodeCreatedMessage is broadcast when a node is persisted
type NodeCreatedMessage struct {
	Type string      `json:"type"` // "node_created"
	Node canvas.Node `json:"node"`
}

// NodeMovedMessage is broadcast when a node's position changes
type NodeMovedMessage struct {
	Type     string          `json:"type"` // "node_moved"
	NodeID   string          `json:"node_id"`
	Position canvas.Position `json:"position"`
}

// NodeDeletedMessage is broadcast to the whole room, sender included, so
// every replica runs the same cascade removal.
type NodeDeletedMessage struct {
	Type   string `json:"type"` // "node_deleted"
	NodeID string `json:"node_id"`
}

// CanvasStateMessage carries the full snapshot sent on join
type CanvasStateMessage struct {
	Type  string        `json:"type"` // "canvas_state"
	Nodes []canvas.Node `json:"nodes"`
	Edges []canvas.Edge `json:"edges"`
}

// EnrichmentAppliedMessage is broadcast when an AI enrichment completes.
// Summaries carry text only; questions and evidence carry new graph state.
type EnrichmentAppliedMessage struct {
	Type     string        `json:"type"` // "enrichment_applied"
	Kind     string        `json:"kind"` // "question", "evidence", "summary"
	NodeID   string        `json:"node_id"`
	NewNodes []canvas.Node `json:"new_nodes,omitempty"`
	NewEdges []canvas.Edge `json:"new_edges,omitempty"`
	Summary  string        `json:"summary,omitempty"`
}

// EnrichmentFailedMessage is sent to the requester only; other room
// members never learn a request failed.
type EnrichmentFailedMessage struct {
	Type    string `json:"type"` // "enrichment_failed"
	Kind    string `json:"kind"`
	NodeID  string `json:"node_id"`
	Reason  string `json:"reason"`  // "rate_limited", "timeout", "error"
	Message string `json:"message"` // shown to the user as-is
}

// LayoutAppliedMessage is broadcast after an auto-layout rewrites positions
type LayoutAppliedMessage struct {
	Type  string        `json:"type"` // "layout_applied"
	Nodes []canvas.Node `json:"nodes"`
}

// ErrorMessage reports an invalid intent back to its sender
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}
