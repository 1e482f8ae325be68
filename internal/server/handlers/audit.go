package handlers

import (
	"net/http"
	"strconv"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// Audit listing bounds.
const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

func auditLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		return defaultAuditLimit
	}
	if limit > maxAuditLimit {
		return maxAuditLimit
	}
	return limit
}

// ListOperations returns the most recent admin operation records.
func (h *Handlers) ListOperations(w http.ResponseWriter, r *http.Request) {
	ops, err := h.store.ListAdminOperations(r.Context(), auditLimit(r))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list operations", err)
		return
	}
	if ops == nil {
		ops = []types.AdminOperation{}
	}
	h.writeJSON(w, map[string]interface{}{"operations": ops})
}

// ListSyncLogs returns the most recent sync log rows.
func (h *Handlers) ListSyncLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.RecentSyncLogs(r.Context(), auditLimit(r))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list sync logs", err)
		return
	}
	if logs == nil {
		logs = []types.SyncLog{}
	}
	h.writeJSON(w, map[string]interface{}{"syncLogs": logs})
}
