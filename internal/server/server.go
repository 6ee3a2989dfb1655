// Package server provides the HTTP API for account signup, login, and
// password recovery.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/nextgenfitness/backend/internal/store"
)

// Server is the API server.
type Server struct {
	store       *store.Store
	addr        string
	corsOrigins []string
	bcryptCost  int
	logger      *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Store       *store.Store
	Addr        string
	CORSOrigins []string
	BcryptCost  int
	Logger      *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	return &Server{
		store:       cfg.Store,
		addr:        cfg.Addr,
		corsOrigins: cfg.CORSOrigins,
		bcryptCost:  cfg.BcryptCost,
		logger:      cfg.Logger,
	}
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting api server", "addr", s.addr)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down api server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// routes builds the router with middleware and the account endpoints.
func (s *Server) routes() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Post("/forgot-password", s.handleForgotPassword)
	r.Post("/reset-password", s.handleResetPassword)

	return r
}
