// File: internal/server/server.go
// Description: HTTP front end exposing the automation pipeline. Submission
// is asynchronous; the real work proceeds on the registry's background
// goroutines while these handlers stay request-scoped.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/registry"
)

// Server hosts the automation HTTP API.
type Server struct {
	cfg        config.ServerConfig
	logger     *zap.Logger
	registry   *registry.Registry
	httpServer *http.Server
}

// New assembles the server around an existing registry.
func New(cfg config.ServerConfig, reg *registry.Registry, logger *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger.Named("server"),
		registry: reg,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	handlers := NewHandlers(logger, reg, cfg.ScreenshotDir)
	handlers.RegisterRoutes(r)

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}
	return s
}

// Start runs the HTTP listener until the context is cancelled, then shuts
// down gracefully: first the listener, then the registry's in-flight
// executions, bounded by the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Automation backend starting", zap.String("address", s.cfg.ListenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Received shutdown signal, shutting down gracefully...")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := s.registry.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("Timed out waiting for in-flight executions", zap.Error(err))
		return err
	}

	s.logger.Info("Automation backend stopped.")
	return nil
}

// corsMiddleware provides the permissive CORS policy the dashboard needs.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
