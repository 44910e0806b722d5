package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/infrastructure/logging"
	"github.com/nerrad567/warehouse-core/internal/status"
	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// statusInterval is the period between component probes.
const statusInterval = 30 * time.Second

// TypeLister lists the entity types present in the store. orion.Client satisfies it.
type TypeLister interface {
	Types(ctx context.Context) ([]string, error)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	WS         config.WebSocketConfig
	Feed       config.FeedConfig
	Logger     *logging.Logger
	Repository *warehouse.Repository
	Types      TypeLister      // optional: enables /types
	Status     *status.Checker // optional: enables /components
	Readings   ReadingSource   // optional: enables the sensor.reading relay
	Version    string
}

// Server is the HTTP API server for the warehouse dashboard.
//
// It manages the HTTP listener, routes, middleware, change feed
// subscriptions and the WebSocket hub. The server is created with New() and
// started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	feedCfg   config.FeedConfig
	logger    *logging.Logger
	repo      *warehouse.Repository
	types     TypeLister
	status    *status.Checker
	readings  ReadingSource
	version   string
	startTime time.Time

	board  *Board
	hub    *Hub
	server *http.Server
	cancel context.CancelFunc // cancels background goroutines on Close()

	feedsMu     sync.Mutex
	unsubscribe []func()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Repository == nil {
		return nil, fmt.Errorf("warehouse repository is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		feedCfg:   deps.Feed,
		logger:    deps.Logger,
		repo:      deps.Repository,
		types:     deps.Types,
		status:    deps.Status,
		readings:  deps.Readings,
		version:   deps.Version,
		startTime: time.Now(),
		board:     NewBoard(),
		hub:       NewHub(deps.WS, deps.Logger),
	}
	s.hub.SetReplay(s.replay)
	s.board.OnChange(func(entityType string, records any) {
		s.hub.Broadcast(ChangedChannel(entityType), records)
	})
	return s, nil
}

// Board returns the snapshot board fed by the change feeds.
func (s *Server) Board() *Board {
	return s.board
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start subscribes the change feeds, starts the WebSocket hub, the alert
// notifier, the reading relay and the component prober, and launches the HTTP listener in a
// background goroutine. The server can be stopped with Close().
//
// Each feed fetches once before Start returns, so snapshots of a reachable
// store are available to the first request.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)

	s.startFeeds(srvCtx)
	go s.watchAlerts(srvCtx)

	if err := s.relayReadings(); err != nil {
		s.logger.Warn("failed to subscribe to sensor readings for WebSocket", "error", err)
	}

	if s.status != nil {
		go s.status.Run(srvCtx, statusInterval)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.ReadTimeout(),
		ReadHeaderTimeout: s.cfg.ReadTimeout(),
		WriteTimeout:      s.cfg.WriteTimeout(),
		IdleTimeout:       s.cfg.IdleTimeout(),
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close stops the feeds and gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.stopFeeds()

	if s.cancel != nil {
		s.cancel()
	}

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
