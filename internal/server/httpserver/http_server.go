// Package httpserver runs the DevPulse API server.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/devpulse/internal/config"
	"git.home.luguber.info/inful/devpulse/internal/daemon"
	derrors "git.home.luguber.info/inful/devpulse/internal/errors"
	"git.home.luguber.info/inful/devpulse/internal/favorites"
	"git.home.luguber.info/inful/devpulse/internal/metrics"
	"git.home.luguber.info/inful/devpulse/internal/presets"
	"git.home.luguber.info/inful/devpulse/internal/server/handlers"
	smw "git.home.luguber.info/inful/devpulse/internal/server/middleware"
)

// Options carries injectable dependencies and build information.
type Options struct {
	Recorder metrics.Recorder
	Registry *prom.Registry
	Version  string
}

// Server manages the API HTTP endpoint.
type Server struct {
	cfg      *config.Config
	srv      *http.Server
	handlers *handlers.Handlers
	opts     Options
	logger   *slog.Logger
	mchain   func(http.Handler) http.Handler
}

// New constructs the server wiring instance.
func New(cfg *config.Config, runtime *daemon.Runtime, favStore *favorites.Store, presetStore *presets.Store, logger *slog.Logger, opts Options) *Server {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	h := handlers.New(runtime, favStore, presetStore, opts.Recorder, logger, cfg.User, opts.Version, cfg.UI.DefaultView)
	adapter := derrors.NewHTTPErrorAdapter(logger)

	return &Server{
		cfg:      cfg,
		handlers: h,
		opts:     opts,
		logger:   logger,
		mchain:   smw.Chain(logger, adapter, opts.Recorder),
	}
}

// Handler builds the routed handler with the middleware chain applied.
// Exposed for httptest-based tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/repos", s.handlers.HandleRepos)
	mux.HandleFunc("/api/repos/analyze", s.handlers.HandleAnalyze)
	mux.HandleFunc("/api/repos/pull", s.handlers.HandlePull)
	mux.HandleFunc("/api/export/csv", s.handlers.HandleExportCSV)
	mux.HandleFunc("/api/favorites", s.handlers.HandleFavorites)
	mux.HandleFunc("/api/favorites/check", s.handlers.HandleFavoritesCheck)
	mux.HandleFunc("/api/filter-presets", s.handlers.HandlePresets)
	mux.HandleFunc("/api/filter-presets/", s.handlers.HandlePresetByID)
	mux.HandleFunc("/api/status", s.handlers.HandleStatus)
	mux.HandleFunc("/health", s.handlers.HandleHealth)
	mux.HandleFunc("/healthz", s.handlers.HandleHealth) // Kubernetes-style alias

	if s.cfg.Monitoring.MetricsEnabled && s.opts.Registry != nil {
		mux.Handle(s.cfg.Monitoring.MetricsPath, metrics.HTTPHandler(s.opts.Registry))
	}

	return s.mchain(mux)
}

// Start binds the port up front so address conflicts surface immediately,
// then serves in the background.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("bind api port %d: %w", s.cfg.Server.Port, err)
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("api server error", "error", err)
		}
	}()

	s.logger.Info("API server started", slog.Int("port", s.cfg.Server.Port))
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	s.logger.Info("API server stopped")
	return nil
}
