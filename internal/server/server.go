// Package server provides the HTTP control surface and frame stream for particlehands.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/particlehands/internal/logging"
	"github.com/ayusman/particlehands/internal/server/api"
	"go.uber.org/zap"
)

const shutdownTimeout = 3 * time.Second

// Config holds the server configuration. Routes whose dependency is nil are
// not registered.
type Config struct {
	StaticDir  string
	Controller api.Controller
	Hub        *Hub
	Previewer  Previewer
	Logger     *zap.Logger
}

// Server represents the HTTP server for particlehands.
type Server struct {
	config Config
	logger *zap.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := logging.OrNop(config.Logger)
	s := &Server{
		config: config,
		logger: logger.Named("server"),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/shapes", api.ShapesHandler{})

	if ctl := s.config.Controller; ctl != nil {
		s.mux.Handle("/api/state", api.NewStateHandler(ctl))
		s.mux.Handle("/api/shape", api.NewShapeHandler(ctl))
		s.mux.Handle("/api/explode", api.NewExplodeHandler(ctl))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/stream", s.config.Hub)
	}

	if s.config.Previewer != nil {
		s.mux.Handle("/api/preview", NewStreamHandler(s.config.Previewer))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		response["clients"] = s.config.Hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is done, then disconnects stream
// clients and shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	// Long-lived streams end when base is canceled.
	base, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	cancelBase()
	if s.config.Hub != nil {
		s.config.Hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
