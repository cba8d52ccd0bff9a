// Package server exposes challan generation and IFSC lookup over HTTP.
//
// Every request is independent: uploaded files are processed in memory and
// nothing is kept once the response is written.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/v1/profiles
//	POST /api/v1/challans      multipart upload, returns review data and artifacts
//	GET  /api/v1/ifsc/{code}
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"challan-service/internal/ifsc"
	"challan-service/internal/pipeline"
	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// Config holds HTTP server settings
type Config struct {
	Addr            string        `json:"addr"`
	MaxBodyBytes    int64         `json:"max_body_bytes"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DefaultConfig returns the default server settings
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		MaxBodyBytes:    32 << 20,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return fmt.Errorf("read and write timeouts must be positive")
	}
	return nil
}

// Server is the HTTP boundary
type Server struct {
	config   *Config
	pipeline *pipeline.Service
	ifsc     *ifsc.Client
	router   chi.Router
	logger   logger.Logger
}

// New creates a Server; a nil config uses DefaultConfig
func New(config *Config, svc *pipeline.Service, lookup *ifsc.Client) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "server", config.Addr, err)
	}
	if svc == nil || lookup == nil {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "server dependencies", nil, nil)
	}

	s := &Server{
		config:   config,
		pipeline: svc,
		ifsc:     lookup,
		logger:   logger.GetGlobalLogger().WithComponent("server"),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(RequestID)
	router.Use(Logger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(SecureHeaders)
	router.Use(BodyLimit(s.config.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/profiles", s.handleProfiles)
		r.Post("/challans", s.handleChallans)
		r.Get("/ifsc/{code}", s.handleIFSC)
	})

	return router
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.config.Addr).Info("Challan server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.NetworkError(errors.CodeConnectionFailed, s.config.Addr, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down challan server")
	return httpServer.Shutdown(shutdownCtx)
}
