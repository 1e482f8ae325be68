package handlers

import (
	"fmt"
	"net/http"
)

// Reindex rebuilds the alert search indexes.
func (h *Handlers) Reindex(w http.ResponseWriter, r *http.Request) {
	result, err := h.backend.ReindexAlerts(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "reindex failed", err)
		return
	}

	if result.Details == nil {
		result.Details = map[string]interface{}{}
	}
	h.writeJSON(w, map[string]interface{}{
		"success":        true,
		"indexesCreated": result.IndexesCreated,
		"message":        fmt.Sprintf("Created %d search indexes", result.IndexesCreated),
		"duration":       fmt.Sprintf("%dms", result.DurationMS),
		"details":        result.Details,
	})
}
