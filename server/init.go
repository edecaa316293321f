package server

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/polemica/polemica/ai"
	"github.com/polemica/polemica/config"
	"github.com/polemica/polemica/store"
)

// NewCanvasServer wires the store, the enrichment client and the room
// registry into a server ready to Start.
func NewCanvasServer(db *sql.DB, cfg *config.Config, logger *zap.SugaredLogger) *CanvasServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())

	enricher := ai.NewClient(ai.Config{
		BaseURL:         cfg.AI.BaseURL,
		QuestionTimeout: time.Duration(cfg.AI.QuestionTimeoutSeconds) * time.Second,
		EvidenceTimeout: time.Duration(cfg.AI.EvidenceTimeoutSeconds) * time.Second,
		RequestsPerMin:  cfg.AI.RequestsPerMinute,
		Burst:           cfg.AI.Burst,
		Logger:          logger,
	})

	s := &CanvasServer{
		db:         db,
		store:      store.NewGraphStore(db),
		enricher:   enricher,
		rooms:      NewRoomRegistry(logger),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		slow:       make(chan *Client, MaxClients),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.state.Store(int32(ServerStateRunning))

	return s
}

// SetConfigWatcher attaches a config watcher whose reloads swap in a
// fresh enrichment client with the new AI settings.
func (s *CanvasServer) SetConfigWatcher(w *config.Watcher) {
	s.configWatcher = w
	w.OnReload(func(cfg *config.Config) error {
		s.setEnricher(ai.NewClient(ai.Config{
			BaseURL:         cfg.AI.BaseURL,
			QuestionTimeout: time.Duration(cfg.AI.QuestionTimeoutSeconds) * time.Second,
			EvidenceTimeout: time.Duration(cfg.AI.EvidenceTimeoutSeconds) * time.Second,
			RequestsPerMin:  cfg.AI.RequestsPerMinute,
			Burst:           cfg.AI.Burst,
			Logger:          s.logger,
		}))
		s.logger.Infow("Enrichment client reloaded",
			"base_url", cfg.AI.BaseURL,
			"question_timeout_s", cfg.AI.QuestionTimeoutSeconds,
			"evidence_timeout_s", cfg.AI.EvidenceTimeoutSeconds,
		)
		return nil
	})
}
