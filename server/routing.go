package server

import (
	"net/http"
)

// setupHTTPRoutes configures all HTTP handlers on a dedicated mux
func (s *CanvasServer) setupHTTPRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket))                 // Real-time canvas sync
	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))                // Liveness and stats
	mux.HandleFunc("/api/canvases", s.corsMiddleware(s.HandleCanvases))        // List/create canvases (GET/POST)
	mux.HandleFunc("/api/canvas/", s.corsMiddleware(s.HandleCanvasResource))   // Canvas nodes/edges (GET /api/canvas/{id}/nodes|edges)

	return mux
}

// corsMiddleware adds CORS headers to HTTP responses using configured allowed origins.
// Uses the same origin validation as WebSocket connections (server.allowed_origins config).
func (s *CanvasServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
