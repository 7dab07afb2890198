// Package server exposes the read-only HTTP query surface of the trader:
// health probes, portfolio and market snapshots, cached predictions, model
// performance, Prometheus metrics, and a websocket event stream.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/market"
	"github.com/yourusername/quant-trader/internal/metrics"
	"github.com/yourusername/quant-trader/internal/model"
	"github.com/yourusername/quant-trader/internal/trading"
)

// DatabasePinger checks database connectivity for the readiness probe
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

type readyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the trader's query API
type Server struct {
	serviceName string
	version     string
	port        int

	engine      *trading.Engine
	simulator   *market.Simulator
	cache       *model.PredictionCache
	performance *model.PerformanceTracker
	hub         *Hub
	db          DatabasePinger

	server   *http.Server
	upgrader websocket.Upgrader
	logger   *logrus.Logger

	mu    sync.RWMutex
	ready bool
}

// Config holds the server's collaborators and settings
type Config struct {
	ServiceName string
	Version     string
	Port        int
	Engine      *trading.Engine
	Simulator   *market.Simulator
	Cache       *model.PredictionCache
	Performance *model.PerformanceTracker
	Hub         *Hub
	DB          DatabasePinger
	Logger      *logrus.Logger
}

// NewServer creates the API server
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == 0 {
		port = 8080
	}

	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		port:        port,
		engine:      cfg.Engine,
		simulator:   cfg.Simulator,
		cache:       cfg.Cache,
		performance: cfg.Performance,
		hub:         cfg.Hub,
		db:          cfg.DB,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: cfg.Logger,
	}
}

// SetReady marks the server as ready to accept traffic
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Start runs the server in the background and shuts it down when the context
// is cancelled
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/v1/markets/{match_id}", s.handleMarket)
	mux.HandleFunc("GET /api/v1/predictions/{match_id}", s.handlePredictions)
	mux.HandleFunc("GET /api/v1/models/performance", s.handlePerformance)
	mux.HandleFunc("/api/v1/events/stream", s.handleStream)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.port,
			"service": s.serviceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully stops the server and closes stream clients
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("API server shutting down")
	if s.hub != nil {
		s.hub.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := readyResponse{
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if allHealthy {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.PortfolioSummary())
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("match_id")
	odds, ok := s.simulator.GetCurrentOdds(matchID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no market for match " + matchID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"match_id": matchID,
		"odds":     odds,
	})
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("match_id")
	predictions := s.cache.Recent(matchID)
	if len(predictions) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no predictions for match " + matchID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"match_id":    matchID,
		"predictions": predictions,
	})
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.performance.All())
}

// handleStream upgrades the connection and attaches it to the event hub
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "event stream not enabled"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := s.hub.add(conn)
	go s.hub.writeLoop(c)
	go s.hub.readLoop(c)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
