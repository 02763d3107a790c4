package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/courseforge/chat"
)

// ChatService streams a tutoring conversation as deduplicated deltas.
// *chat.Service satisfies it.
type ChatService interface {
	Stream(ctx context.Context, req *chat.Request, emit func(delta string) error) error
}

// Server wraps the HTTP listener. WriteTimeout is zero because the chat
// endpoint holds the response open for the lifetime of the model stream.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// ServerConfig carries everything the router needs.
type ServerConfig struct {
	Addr     string
	MediaDir string
	Chat     ChatService
	Logger   *slog.Logger
}

// NewServer builds a server around the configured router.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
