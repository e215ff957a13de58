// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware, and
// routes, prepares the database at startup, and stops everything gracefully.
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config → database.DB (pool only, no I/O yet) → Server
//
// Server.New() then builds, per collection:
//
//	database.RecordTable → service.RecordService → handler.RecordHandler
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mohamedamineameur/renderback/internal/handler"
	"github.com/mohamedamineameur/renderback/internal/metrics"
	"github.com/mohamedamineameur/renderback/internal/middleware"
	"github.com/mohamedamineameur/renderback/internal/model"
	"github.com/mohamedamineameur/renderback/internal/repository/database"
	"github.com/mohamedamineameur/renderback/internal/service"
	"github.com/mohamedamineameur/renderback/internal/validation"
)

// Config holds server configuration.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MetricsEnabled  bool
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database pool. Start() closes it during graceful
// shutdown, after in-flight requests have drained.
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      *database.DB
	metrics *metrics.Metrics
}

// New creates a new Server over db. It performs no database I/O, so it
// succeeds even when the database is unreachable; call InitDatabase to
// prepare the schema.
func New(cfg Config, db *database.DB, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(nil),
	}

	if err := s.metrics.RegisterDBStats(db.SQL(), db.Driver().String()); err != nil {
		return nil, fmt.Errorf("registering database metrics: %w", err)
	}

	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /livres          → Create livre
// GET    /livres          → List livres
// DELETE /livres/{id}     → Delete livre
// POST   /couleurs        → Create couleur
// GET    /couleurs        → List couleurs
// GET    /couleurs/{id}   → Get couleur
// PUT    /couleurs/{id}   → Rename couleur
// DELETE /couleurs/{id}   → Delete couleur
// GET    /metrics         → Prometheus (when enabled)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. CORS sits last so preflight
// requests are still logged and counted before it answers them.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Instrument(s.logger, s.metrics))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	validate := validation.New()
	livres := s.recordHandler(model.Livre, validate)
	couleurs := s.recordHandler(model.Couleur, validate)

	s.router.Post("/livres", livres.HandleCreate)
	s.router.Get("/livres", livres.HandleList)
	s.router.Delete("/livres/{id}", livres.HandleDelete)

	s.router.Post("/couleurs", couleurs.HandleCreate)
	s.router.Get("/couleurs", couleurs.HandleList)
	s.router.Get("/couleurs/{id}", couleurs.HandleGetByID)
	s.router.Put("/couleurs/{id}", couleurs.HandleUpdate)
	s.router.Delete("/couleurs/{id}", couleurs.HandleDelete)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
}

func (s *Server) recordHandler(kind model.Kind, validate *validation.Validator) *handler.RecordHandler {
	svc := service.NewRecordService(kind, s.db.Records(kind), validate, s.logger)
	return handler.NewRecordHandler(svc, s.logger)
}

// InitDatabase connects, syncs the schema and seeds default colors.
//
// Failures are logged, never returned: the HTTP server still starts, and
// requests fail individually with the store's error until the database
// comes back.
func (s *Server) InitDatabase(ctx context.Context) {
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("unable to connect to the database", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("database connection established", slog.String("driver", s.db.Driver().String()))

	if err := s.db.Sync(ctx); err != nil {
		s.logger.Error("database sync failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("database synchronized")

	n, err := service.NewCouleurSeeder(s.db.Couleurs(), s.logger).Seed(ctx)
	if err != nil {
		s.logger.Error("seeding default colors failed", slog.String("error", err.Error()))
		return
	}
	s.metrics.RecordSeeded(model.Couleur.Name, n)
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (ShutdownTimeout)
// 3. Close the database pool
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server is running",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
