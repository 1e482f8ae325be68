package handlers

import (
	"net/http"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// Health returns the server health status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
	}
	h.writeJSON(w, map[string]string{"status": status})
}

// SourceHealth returns the latest per-source health snapshot with the
// derived overall status.
func (h *Handlers) SourceHealth(w http.ResponseWriter, r *http.Request) {
	report, err := h.backend.GetHealthStatus(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to get health status", err)
		return
	}

	sources := report.Sources
	if sources == nil {
		sources = []types.SourceHealth{}
	}
	h.writeJSON(w, map[string]interface{}{
		"sources":       sources,
		"lastUpdated":   report.CheckedAt,
		"overallStatus": types.OverallHealth(sources),
	})
}

// TriggerHealthCheck asks the platform to probe every source now.
func (h *Handlers) TriggerHealthCheck(w http.ResponseWriter, r *http.Request) {
	results, err := h.backend.RunHealthCheck(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "health check failed", err)
		return
	}
	if results == nil {
		results = map[string]interface{}{}
	}
	h.writeJSON(w, map[string]interface{}{
		"success": true,
		"message": "Health check completed",
		"results": results,
	})
}
