// Package api exposes the question-answering pipeline over HTTP.
//
// Endpoints:
//
//	POST /api/ask                    →  answer one question
//	GET  /api/conversations/{id}     →  conversation history
//	GET  /health                     →  liveness probe
//	GET  /ready                      →  readiness probe (pings the database)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints
//   - ask.go: the answering endpoint
//   - conversation.go: conversation history endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noorhq/noor/internal/assistant"
	"github.com/noorhq/noor/internal/conversation"
	"github.com/noorhq/noor/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response. The
	// answering path includes an embedding call plus a completion call
	// with one retry, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health       *HealthHandler
	ask          *AskHandler
	conversation *ConversationHandler
}

// NewServer creates a server with all routes registered.
func NewServer(asst *assistant.Assistant, store *conversation.Store, pool *pgxpool.Pool, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:          mux,
		logger:       logger,
		health:       NewHealthHandler(pool, logger),
		ask:          NewAskHandler(asst, logger),
		conversation: NewConversationHandler(store, logger),
	}

	s.health.RegisterRoutes(mux)
	s.ask.RegisterRoutes(mux)
	s.conversation.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
