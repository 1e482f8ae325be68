// Package handlers implements HTTP request handlers for the regpulse admin
// API. Every handler is a thin request→response transform: validate input,
// invoke one backend procedure, shape the JSON envelope. Business rules live
// on the hosted platform.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/regpulse-io/regpulse/internal/backend"
	"github.com/regpulse-io/regpulse/internal/jobs"
	"github.com/regpulse-io/regpulse/internal/notify"
	"github.com/regpulse-io/regpulse/internal/searchcache"
	"github.com/regpulse-io/regpulse/internal/store"
)

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	store    store.Store
	backend  *backend.Client
	cache    *searchcache.Cache
	jobs     *jobs.Guard
	notifier *notify.Dispatcher
	logger   *slog.Logger
}

// New creates a new Handlers instance.
func New(st store.Store, bc *backend.Client, sc *searchcache.Cache, notifier *notify.Dispatcher) *Handlers {
	return &Handlers{
		store:    st,
		backend:  bc,
		cache:    sc,
		jobs:     jobs.NewGuard(st),
		notifier: notifier,
		logger:   slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// writeError logs the internal error and returns a sanitized JSON error to
// the client. Backend failure detail never reaches the response body.
func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.logger.Error(msg, "error", err, "status", status)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, payload interface{}) {
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}
