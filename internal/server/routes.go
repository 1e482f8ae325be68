package server

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/regpulse-io/regpulse/internal/guard"
	"github.com/regpulse-io/regpulse/internal/server/handlers"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := handlers.New(s.store, s.backend, s.cache, s.notifier)
	g := guard.New(s.backend)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/search", h.Search)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(g.RequireAdmin)

		// Agencies
		r.Get("/agencies", h.ListAgencies)

		// Deduplication
		r.Post("/dedupe", h.RunDedupe)
		r.Route("/duplicates", func(r chi.Router) {
			r.Get("/", h.ListDuplicateGroups)
			r.Delete("/", h.RemoveDuplicateGroup)
			r.Delete("/{groupID}", h.RemoveDuplicateGroup)
			r.Get("/{groupID}/alerts", h.DuplicateGroupAlerts)
		})

		// Source health
		r.Get("/health", h.SourceHealth)
		r.Post("/health", h.TriggerHealthCheck)

		// Maintenance and jobs
		r.Post("/reindex", h.Reindex)
		r.Post("/backfill", h.TriggerBackfill)
		r.Post("/sync", h.TriggerSync)

		// Audit
		r.Get("/operations", h.ListOperations)
		r.Get("/synclogs", h.ListSyncLogs)
	})

	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())
}
