// Package server exposes the simulator over HTTP: the oracle proxy, the
// game/session API, material uploads and the WebSocket stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tradeTutor/internal/game"
	"tradeTutor/internal/metrics"
	"tradeTutor/internal/ports"
	"tradeTutor/internal/scenario"
)

// Config holds the server's dependencies.
type Config struct {
	Port        string
	FrontendURL string
	Logger      ports.Logger

	Oracle    ports.TextOracle
	Game      *game.Service
	Generator *scenario.Generator

	Scenarios ports.ScenarioRepository
	Materials ports.MaterialRepository
	Results   ports.ResultRepository
	Users     ports.UserRepository
	Trades    ports.TradeRepository

	// WSHandler serves GET /ws. Optional; nil disables the stream route.
	WSHandler http.HandlerFunc
}

// Server is the HTTP front of the simulator.
type Server struct {
	cfg  Config
	http *http.Server
}

// New builds the router and the underlying http.Server.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil || cfg.Oracle == nil || cfg.Game == nil || cfg.Generator == nil {
		return nil, fmt.Errorf("missing required dependencies for server: %w", ports.ErrConfigurationError)
	}
	if cfg.Port == "" {
		cfg.Port = "3001"
	}

	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if cfg.WSHandler != nil {
		// Outside the metrics middleware: the upgrade hijacks the connection.
		r.Get("/ws", cfg.WSHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(metrics.Middleware)

		r.Post("/claude/messages", s.handleProxy)

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", s.handleStart)
			r.Post("/advance", s.handleAdvance)
			r.Post("/pause", s.handlePause)
			r.Post("/resume", s.handleResume)
			r.Post("/speed", s.handleSpeed)
			r.Post("/reset", s.handleReset)
			r.Post("/evaluate", s.handleEvaluate)
			r.Get("/state", s.handleState)
			r.Post("/trades", s.handleTrade)
			r.Get("/trades", s.handleListTrades)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Post("/generate", s.handleGenerateScenario)
			r.Get("/", s.handleListScenarios)
		})

		r.Post("/topics/suggest", s.handleSuggestTopics)

		r.Route("/materials", func(r chi.Router) {
			r.Post("/", s.handleUploadMaterial)
			r.Get("/", s.handleListMaterials)
			r.Delete("/{id}", s.handleDeleteMaterial)
		})

		r.Get("/results", s.handleListResults)
		r.Get("/assets/{symbol}/history", s.handleAssetHistory)
	})

	s.http = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info(ctx, "HTTP server listening", map[string]interface{}{"addr": s.http.Addr})
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.cfg.Logger.Info(shutdownCtx, "HTTP server shutting down")
	return s.http.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
