// Package server runs the HTTP listener for the emotion analysis API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/application/container"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/presentation/http/routes"
	"github.com/AtRiskMedia/emotrack-go/pkg/config"
)

const maxHeaderBytes = 1 << 20

// Server owns the listener and the http.Server built from the container.
type Server struct {
	httpServer *http.Server
	logger     *logging.ChanneledLogger

	mu       sync.Mutex
	listener net.Listener
}

// New builds a server for addr (":8080", "127.0.0.1:0", or a bare port).
func New(addr string, c *container.Container) *Server {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = ":" + addr
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           routes.SetupRoutes(c),
			ReadTimeout:       config.ServerReadTimeout,
			ReadHeaderTimeout: config.ServerReadTimeout,
			WriteTimeout:      config.ServerWriteTimeout,
			IdleTimeout:       config.ServerIdleTimeout,
			MaxHeaderBytes:    maxHeaderBytes,
		},
		logger: c.Logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr is the bound address once Run is listening, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Run serves until ctx is cancelled, then drains connections for at most
// grace. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context, grace time.Duration) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.System().Info("HTTP server listening", "address", ln.Addr().String())

	served := make(chan error, 1)
	go func() { served <- s.httpServer.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	start := time.Now()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Shutdown().Error("HTTP server did not drain in time", "grace", grace, "error", err)
		return err
	}
	<-served
	s.logger.Shutdown().Info("HTTP server stopped", "duration", time.Since(start))
	return nil
}
