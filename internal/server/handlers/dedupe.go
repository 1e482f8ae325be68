package handlers

import (
	"fmt"
	"net/http"

	"github.com/regpulse-io/regpulse/internal/guard"
	"github.com/regpulse-io/regpulse/internal/metrics"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// RunDedupe runs platform-wide alert deduplication.
func (h *Handlers) RunDedupe(w http.ResponseWriter, r *http.Request) {
	performedBy := ""
	if profile := guard.ProfileFromContext(r.Context()); profile != nil {
		performedBy = profile.ID
	}

	result, err := h.backend.DeduplicateAlerts(r.Context(), performedBy)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "deduplication failed", err)
		return
	}
	metrics.DedupeRuns.Add(1)

	message := fmt.Sprintf("Removed %d duplicate alerts", result.RemovedCount)
	h.notifier.Dispatch(r.Context(), types.Notice{
		Level:     types.NoticeLevelInfo,
		Operation: "dedupe",
		Message:   message,
		Details:   map[string]interface{}{"removed_count": result.RemovedCount, "performed_by": performedBy},
	})

	if result.Details == nil {
		result.Details = map[string]interface{}{}
	}
	h.writeJSON(w, map[string]interface{}{
		"success":      true,
		"removedCount": result.RemovedCount,
		"message":      message,
		"details":      result.Details,
	})
}
