// Package server provides HTTP server initialization and management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/routes"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
)

// Server wraps the HTTP server with configuration and dependency injection
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New creates the HTTP server. Event streams are closed when the server shuts down.
func New(port string, c *container.Container) *Server {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      routes.Handler(c),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}
	httpServer.RegisterOnShutdown(func() {
		closed := c.Broadcaster.CloseAll()
		c.Logger.Shutdown().Info("Event streams closed", "count", closed)
	})

	return &Server{
		httpServer: httpServer,
		container:  c,
	}
}

// Addr returns the listen address
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start begins listening for HTTP requests and blocks until the server stops
func (s *Server) Start() error {
	s.container.Logger.System().Info("HTTP server listening", "address", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.container.Logger.Shutdown().Info("Shutting down HTTP server...", "address", s.httpServer.Addr)
	return s.httpServer.Shutdown(ctx)
}
