package server

import (
	"sync"

	"go.uber.org/zap"
)

// RoomRegistry tracks which clients are joined to which canvas. A client
// is in at most one room at a time; joining a second canvas implicitly
// leaves the first.
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *zap.SugaredLogger
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry(logger *zap.SugaredLogger) *RoomRegistry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RoomRegistry{
		rooms:  make(map[string]map[*Client]bool),
		logger: logger,
	}
}

// Join adds a client to a canvas room, leaving any previous room first.
func (r *RoomRegistry) Join(canvasID string, client *Client) {
	r.mu.Lock()
	r.leaveLocked(client)
	room, ok := r.rooms[canvasID]
	if !ok {
		room = make(map[*Client]bool)
		r.rooms[canvasID] = room
	}
	room[client] = true
	client.canvasID = canvasID
	members := len(room)
	r.mu.Unlock()

	r.logger.Infow("Client joined canvas",
		"client_id", client.id,
		"canvas_id", canvasID,
		"members", members,
	)
}

// Leave removes a client from its current room. Empty rooms are dropped.
func (r *RoomRegistry) Leave(client *Client) {
	r.mu.Lock()
	canvasID := client.canvasID
	r.leaveLocked(client)
	r.mu.Unlock()

	if canvasID != "" {
		r.logger.Infow("Client left canvas",
			"client_id", client.id,
			"canvas_id", canvasID,
		)
	}
}

// leaveLocked removes the client from its room. Caller holds r.mu.
func (r *RoomRegistry) leaveLocked(client *Client) {
	if client.canvasID == "" {
		return
	}
	if room, ok := r.rooms[client.canvasID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(r.rooms, client.canvasID)
		}
	}
	client.canvasID = ""
}

// Broadcast sends a message to every client in a room. When exclude is
// non-nil that client is skipped, which is how move and create facts
// avoid echoing back to their originator. Returns the number of clients
// the message was queued for.
func (r *RoomRegistry) Broadcast(canvasID string, msg interface{}, exclude *Client) int {
	r.mu.RLock()
	room := r.rooms[canvasID]
	targets := make([]*Client, 0, len(room))
	for client := range room {
		if client == exclude {
			continue
		}
		targets = append(targets, client)
	}
	r.mu.RUnlock()

	sent := 0
	for _, client := range targets {
		if client.enqueue(msg) {
			sent++
		}
	}
	return sent
}

// Members returns the number of clients in a room.
func (r *RoomRegistry) Members(canvasID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[canvasID])
}

// Rooms returns the number of active rooms.
func (r *RoomRegistry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
