// Package server exposes the analysis pipeline over HTTP and WebSocket.
//
// Endpoints:
//   - POST /api/analyze: analyze {"code": "..."}
//   - GET /api/examples, /api/examples/{id}: the example gallery
//   - GET /api/examples/{id}/tokens: tokens and per-type counts
//   - GET /api/examples/{id}/chart.png: token frequency chart
//   - GET /api/history, /api/history/{id}: recorded analyses
//   - GET /api/ws: one analysis per text message
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/analizador-es/analizador/pkg/gallery"
	"github.com/analizador-es/analizador/pkg/history"
	"github.com/analizador-es/analizador/pkg/logger"
)

// Defaults for Config fields left at zero.
const (
	DefaultAddr         = "localhost:8080"
	DefaultTimeout      = 5 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 5 * time.Second
)

// Config holds the server settings.
type Config struct {
	Addr string

	// Timeout bounds each analysis.
	Timeout time.Duration

	// MaxDepth is passed to compiler.Options.
	MaxDepth int

	// MaxBodyBytes limits request bodies and WebSocket messages.
	MaxBodyBytes int64
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return c
}

// Server serves the pipeline.
type Server struct {
	cfg      Config
	gallery  *gallery.Gallery
	history  *history.Store
	log      *slog.Logger
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// WithGallery replaces the embedded example gallery.
func WithGallery(g *gallery.Gallery) Option {
	return func(s *Server) {
		s.gallery = g
	}
}

// WithHistory enables recording of analyses. Without it the history
// endpoints answer 404.
func WithHistory(store *history.Store) Option {
	return func(s *Server) {
		s.history = store
	}
}

// New creates a Server.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg.withDefaults(),
		gallery: gallery.Default(),
		log:     logger.GetLogger(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// The editor may be served from another origin during development.
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/examples", s.handleExamples)
	s.mux.HandleFunc("GET /api/examples/{id}", s.handleExample)
	s.mux.HandleFunc("GET /api/examples/{id}/tokens", s.handleExampleTokens)
	s.mux.HandleFunc("GET /api/examples/{id}/chart.png", s.handleExampleChart)
	s.mux.HandleFunc("GET /api/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/history/{id}", s.handleHistoryEntry)
	s.mux.HandleFunc("GET /api/ws", s.handleWebSocket)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok")
	})
}

// Handler returns the HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestLog(s.mux)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.log.Info("Server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
