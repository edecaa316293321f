// Package canvas defines the core graph model shared by the store, the
// layout engine, the sync gateway, and the client-side reducer: nodes with
// free 2D positions, directed edges, and the canvas they belong to.
package canvas

import (
	"encoding/json"
	"fmt"
	"math"
)

// Node kinds as they appear on the wire and in storage.
const (
	KindPlain    = "plain"    // user-authored statement
	KindQuestion = "ai_question" // AI-generated probing question
	KindEvidence = "evidence" // AI-sourced supporting material
)

// Position is a node's top-left coordinate on the canvas plane.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Finite reports whether both coordinates are real numbers. Nodes with
// non-finite positions are stored but never rendered.
func (p Position) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// MarshalJSON encodes non-finite coordinates as null; NaN is not valid
// JSON and a hidden node must still survive the wire.
func (p Position) MarshalJSON() ([]byte, error) {
	type coord struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	c := coord{}
	if !math.IsNaN(p.X) && !math.IsInf(p.X, 0) {
		c.X = &p.X
	}
	if !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) {
		c.Y = &p.Y
	}
	return json.Marshal(c)
}

// UnmarshalJSON decodes null or missing coordinates as NaN.
func (p *Position) UnmarshalJSON(data []byte) error {
	type coord struct {
		X *float64 `json:"x"`
		Y *float64 `json:"y"`
	}
	var c coord
	if err := json.Unmarshal(data, &c); err != nil {
		return err
	}
	p.X, p.Y = math.NaN(), math.NaN()
	if c.X != nil {
		p.X = *c.X
	}
	if c.Y != nil {
		p.Y = *c.Y
	}
	return nil
}

// NodeData carries the display payload of a node.
type NodeData struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`   // evidence source link, empty otherwise
	Kind  string `json:"kind,omitempty"`  // plain, ai_question or evidence
	Depth int    `json:"depth,omitempty"` // distance from nearest root, set by ResolveDepths
}

// Node is a single vertex on a canvas.
type Node struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Edge is a directed connection between two nodes on the same canvas.
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Animated bool   `json:"animated,omitempty"`
}

// Canvas is a named debate board owning a set of nodes and edges.
type Canvas struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// EdgeID derives the canonical edge identifier for a source/target pair.
// Creating the same logical edge twice yields the same id, which keeps
// edge inserts idempotent.
func EdgeID(source, target string) string {
	return fmt.Sprintf("edge-%s-%s", source, target)
}

// NewEdge builds an edge with the canonical id for the pair.
func NewEdge(source, target string) Edge {
	return Edge{
		ID:     EdgeID(source, target),
		Source: source,
		Target: target,
	}
}
