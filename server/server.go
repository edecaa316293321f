package server

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/polemica/polemica/ai"
	"github.com/polemica/polemica/config"
	"github.com/polemica/polemica/store"
)

// CanvasServer fans live canvas changes out to every joined client. All
// mutations go through the store first; broadcasts carry facts about
// state that has already been persisted.
type CanvasServer struct {
	db            *sql.DB
	store         *store.GraphStore
	enricher      *ai.Client
	rooms         *RoomRegistry
	configWatcher *config.Watcher

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	slow       chan *Client
	mu         sync.RWMutex

	logger *zap.SugaredLogger

	// HTTP server with timeouts
	httpServer *http.Server

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	drops  atomic.Int64
	state  atomic.Int32
}

// getEnricher returns the current enrichment client. Config reloads swap
// the client, so callers must not cache it across requests.
func (s *CanvasServer) getEnricher() *ai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enricher
}

// setEnricher swaps the enrichment client after a config reload
func (s *CanvasServer) setEnricher(client *ai.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enricher = client
}

// handleClientRegister handles a new client connection
func (s *CanvasServer) handleClientRegister(client *Client) {
	s.mu.Lock()

	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			"client_id", client.id,
			"max_clients", MaxClients,
		)
		client.close()
		return
	}

	s.clients[client] = true
	totalClients := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client connected",
		"client_id", client.id,
		"total_clients", totalClients,
	)
}

// handleClientUnregister handles a client disconnection
func (s *CanvasServer) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		totalClients := len(s.clients)
		s.mu.Unlock()

		s.rooms.Leave(client)
		client.close()

		s.logger.Infow("Client disconnected",
			"client_id", client.id,
			"total_clients", totalClients,
		)
	} else {
		s.mu.Unlock()
	}
}

// reportSlowClient queues a client whose send buffer is full for removal
// by the hub. Called from broadcast paths, so it must not block.
func (s *CanvasServer) reportSlowClient(client *Client) {
	s.drops.Add(1)
	select {
	case s.slow <- client:
	case <-s.ctx.Done():
	default:
		// Removal already queued
	}
}

// removeSlowClient removes a client that can't keep up with broadcasts
func (s *CanvasServer) removeSlowClient(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		s.mu.Unlock()
	} else {
		s.mu.Unlock()
		return // Already removed
	}

	s.rooms.Leave(client)
	client.close()

	s.logger.Warnw("Client send channel full, removing client",
		"client_id", client.id,
		"total_drops", s.drops.Load(),
	)
}

// Run starts the server hub event loop
func (s *CanvasServer) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping due to context cancellation")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		case client := <-s.slow:
			s.removeSlowClient(client)
		}
	}
}
