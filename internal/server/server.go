// Package server implements the regpulse admin HTTP server.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/regpulse-io/regpulse/internal/backend"
	"github.com/regpulse-io/regpulse/internal/notify"
	"github.com/regpulse-io/regpulse/internal/searchcache"
	"github.com/regpulse-io/regpulse/internal/store"
)

// Server is the regpulse admin HTTP server.
type Server struct {
	store    store.Store
	backend  *backend.Client
	cache    *searchcache.Cache
	notifier *notify.Dispatcher
	router   chi.Router
	addr     string
	srv      *http.Server
	logger   *slog.Logger
}

// New creates a new HTTP server. An empty apiKey disables the key check;
// maxBody of 0 disables the request body limit.
func New(addr string, st store.Store, bc *backend.Client, sc *searchcache.Cache, notifier *notify.Dispatcher, apiKey string, maxBody int64) *Server {
	s := &Server{
		store:    st,
		backend:  bc,
		cache:    sc,
		notifier: notifier,
		addr:     addr,
		logger:   slog.Default(),
	}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))
	r.Use(APIKeyMiddleware(apiKey))
	if maxBody > 0 {
		r.Use(MaxBodyMiddleware(maxBody))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
	})

	s.router = r
	s.registerRoutes(r)
	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("regpulse server listening", "addr", s.addr)
	return s.srv.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Shutdown(ctx)
	}
	return nil
}
