package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/regpulse-io/regpulse/internal/guard"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// groupIDParam reads the duplicate group id from the path, falling back to
// the groupId query parameter.
func groupIDParam(r *http.Request) string {
	id := strings.TrimSpace(chi.URLParam(r, "groupID"))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("groupId"))
	}
	return id
}

// ListDuplicateGroups returns the duplicate groups currently identified by
// the backend.
func (h *Handlers) ListDuplicateGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.backend.GetDuplicateGroups(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list duplicate groups", err)
		return
	}
	if groups == nil {
		groups = []types.DuplicateGroup{}
	}
	h.writeJSON(w, map[string]interface{}{"groups": groups})
}

// DuplicateGroupAlerts returns the alert records in one duplicate group.
func (h *Handlers) DuplicateGroupAlerts(w http.ResponseWriter, r *http.Request) {
	groupID := groupIDParam(r)
	if groupID == "" {
		h.writeError(w, http.StatusBadRequest, "groupId is required", nil)
		return
	}

	alerts, err := h.backend.GetDuplicateGroupAlerts(r.Context(), groupID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to get duplicate group alerts", err)
		return
	}
	if alerts == nil {
		alerts = []map[string]interface{}{}
	}
	h.writeJSON(w, map[string]interface{}{"alerts": alerts})
}

// RemoveDuplicateGroup deletes the duplicate alerts in a group, keeping the
// canonical record, and writes an audit record. The audit write is
// best-effort: the primary deletion already committed server-side, so a
// failed write is logged and never fails the response.
func (h *Handlers) RemoveDuplicateGroup(w http.ResponseWriter, r *http.Request) {
	groupID := groupIDParam(r)
	if groupID == "" {
		h.writeError(w, http.StatusBadRequest, "groupId is required", nil)
		return
	}

	performedBy := ""
	if profile := guard.ProfileFromContext(r.Context()); profile != nil {
		performedBy = profile.ID
	}

	result, err := h.backend.RemoveDuplicateGroup(r.Context(), groupID, performedBy)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to remove duplicate group", err)
		return
	}

	if err := h.store.AppendAdminOperation(r.Context(), types.AdminOperation{
		OperationType: "duplicate_removal",
		PerformedBy:   performedBy,
		Details: map[string]interface{}{
			"group_id":      groupID,
			"removed_count": result.RemovedCount,
		},
		CreatedAt: time.Now(),
	}); err != nil {
		h.logger.Error("failed to record duplicate removal", "group", groupID, "error", err)
	}

	h.writeJSON(w, map[string]interface{}{
		"success":      true,
		"removedCount": result.RemovedCount,
		"message":      fmt.Sprintf("Removed %d alerts from duplicate group", result.RemovedCount),
	})
}
