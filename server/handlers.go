package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/polemica/polemica/errors"
	"github.com/polemica/polemica/internal/version"
)

// HandleHealth reports server liveness and basic stats
func (s *CanvasServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, "GET") {
		return
	}

	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Get().Short(),
		"clients": clientCount,
		"rooms":   s.rooms.Rooms(),
	})
}

// HandleCanvases lists canvases (GET) or creates one (POST)
func (s *CanvasServer) HandleCanvases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		canvases, err := s.store.ListCanvases(r.Context())
		if err != nil {
			s.logger.Errorw("Failed to list canvases", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list canvases")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"canvases": canvases})

	case "POST":
		var req struct {
			Title string `json:"title"`
		}
		if err := readJSON(w, r, &req); err != nil {
			return
		}
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		c, err := s.store.CreateCanvas(r.Context(), req.Title)
		if err != nil {
			s.logger.Errorw("Failed to create canvas", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create canvas")
			return
		}
		s.logger.Infow("Canvas created", "canvas_id", c.ID, "title", c.Title)
		writeJSON(w, http.StatusCreated, c)

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleCanvasResource serves /api/canvas/{id}/nodes and /api/canvas/{id}/edges
func (s *CanvasServer) HandleCanvasResource(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, "GET") {
		return
	}

	parts := extractPathParts(r.URL.Path, "/api/canvas/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	canvasID := parts[0]

	if _, err := s.store.GetCanvas(r.Context(), canvasID); err != nil {
		if errors.IsNotFoundError(err) {
			writeError(w, http.StatusNotFound, "canvas not found")
			return
		}
		s.logger.Errorw("Failed to load canvas", "canvas_id", canvasID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load canvas")
		return
	}

	switch parts[1] {
	case "nodes":
		nodes, err := s.store.ListNodes(r.Context(), canvasID)
		if err != nil {
			s.logger.Errorw("Failed to list nodes", "canvas_id", canvasID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list nodes")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"nodes": nodes})

	case "edges":
		edges, err := s.store.ListEdges(r.Context(), canvasID)
		if err != nil {
			s.logger.Errorw("Failed to list edges", "canvas_id", canvasID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list edges")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"edges": edges})

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// HandleWebSocket upgrades a connection and starts the client pumps
func (s *CanvasServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}

	upgrader := s.newUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		send:   make(chan interface{}, MaxClientMessageQueueSize),
		id:     uuid.NewString(),
	}

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
}
