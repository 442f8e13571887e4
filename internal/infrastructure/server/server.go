package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/revise/internal/adapter/httpapi"
	"github.com/eslsoft/revise/internal/infrastructure/config"
)

// Server represents the application server
type Server struct {
	config     *config.Config
	httpServer *http.Server
	logger     *logrus.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logrus.Logger, handler *httpapi.Handler) *Server {
	mux := http.NewServeMux()
	handler.Register(mux)

	corsMiddleware := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "X-Learner-Id", "X-Request-Id"},
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler: AccessLog(corsMiddleware.Handler(mux)),
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		logger:     logger,
	}
}

// StartHTTP starts the HTTP server
func (s *Server) StartHTTP() error {
	s.logger.Infof("HTTP server starting on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorf("Failed to shutdown HTTP server: %v", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}
