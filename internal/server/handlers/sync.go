package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/regpulse-io/regpulse/internal/backend"
	"github.com/regpulse-io/regpulse/internal/guard"
	"github.com/regpulse-io/regpulse/internal/jobs"
	"github.com/regpulse-io/regpulse/internal/metrics"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// Backfill window bounds.
const (
	minBackfillDays = 1
	maxBackfillDays = 365
	defaultSyncDays = 7
)

type jobRequest struct {
	Days    int      `json:"days"`
	Sources []string `json:"sources,omitempty"`
}

// decodeJobRequest parses the optional JSON body of a job-trigger route.
// An empty body yields the zero request.
func decodeJobRequest(r *http.Request) (jobRequest, error) {
	var req jobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, err
	}
	return req, nil
}

// TriggerBackfill starts a historical backfill covering the requested window.
// At most one backfill runs at a time.
func (h *Handlers) TriggerBackfill(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJobRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	if req.Days < minBackfillDays || req.Days > maxBackfillDays {
		h.writeError(w, http.StatusBadRequest, "days must be between 1 and 365", nil)
		return
	}

	if err := h.jobs.CheckIdle(r.Context(), types.TriggerBackfill); err != nil {
		if errors.Is(err, jobs.ErrJobRunning) {
			h.notifier.Dispatch(r.Context(), types.Notice{
				Level:     types.NoticeLevelWarning,
				Operation: "backfill",
				Message:   "Backfill refused: another backfill is running",
			})
			h.writeError(w, http.StatusConflict, "a backfill is already running", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to check running jobs", err)
		return
	}

	performedBy := ""
	if profile := guard.ProfileFromContext(r.Context()); profile != nil {
		performedBy = profile.ID
	}

	result, err := h.backend.TriggerBackfill(r.Context(), backend.SyncRequest{
		Days:        req.Days,
		Sources:     req.Sources,
		TriggeredBy: performedBy,
	})
	if err != nil {
		h.notifier.Dispatch(r.Context(), types.Notice{
			Level:     types.NoticeLevelError,
			Operation: "backfill",
			Message:   "Backfill trigger failed",
		})
		h.writeError(w, http.StatusInternalServerError, "failed to trigger backfill", err)
		return
	}
	metrics.BackfillTriggers.Add(1)

	if result.BackfillID == "" {
		result.BackfillID = jobs.NewJobID()
	}
	if result.Results == nil {
		result.Results = map[string]interface{}{}
	}

	message := fmt.Sprintf("Backfill started for the last %d days", req.Days)
	h.notifier.Dispatch(r.Context(), types.Notice{
		Level:     types.NoticeLevelInfo,
		Operation: "backfill",
		Message:   message,
		Details:   map[string]interface{}{"days": req.Days, "backfill_id": result.BackfillID, "triggered_by": performedBy},
	})

	h.writeJSON(w, map[string]interface{}{
		"success":           true,
		"backfillId":        result.BackfillID,
		"message":           message,
		"estimatedDuration": jobs.EstimateBackfill(req.Days),
		"results":           result.Results,
	})
}

// TriggerSync starts an immediate sync of recent data. The days window
// defaults to one week; any running sync job blocks a new one.
func (h *Handlers) TriggerSync(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJobRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	if req.Days <= 0 {
		req.Days = defaultSyncDays
	}

	if err := h.jobs.CheckIdle(r.Context(), types.TriggerAny); err != nil {
		if errors.Is(err, jobs.ErrJobRunning) {
			h.writeError(w, http.StatusConflict, "a sync is already running", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "failed to check running jobs", err)
		return
	}

	performedBy := ""
	if profile := guard.ProfileFromContext(r.Context()); profile != nil {
		performedBy = profile.ID
	}

	result, err := h.backend.TriggerManualSync(r.Context(), backend.SyncRequest{
		Days:        req.Days,
		Sources:     req.Sources,
		TriggeredBy: performedBy,
	})
	if err != nil {
		h.notifier.Dispatch(r.Context(), types.Notice{
			Level:     types.NoticeLevelError,
			Operation: "sync",
			Message:   "Sync trigger failed",
		})
		h.writeError(w, http.StatusInternalServerError, "failed to trigger sync", err)
		return
	}
	metrics.SyncTriggers.Add(1)

	if result.SyncID == "" {
		result.SyncID = jobs.NewJobID()
	}
	if result.Results == nil {
		result.Results = map[string]interface{}{}
	}

	message := fmt.Sprintf("Sync started for the last %d days", req.Days)
	h.notifier.Dispatch(r.Context(), types.Notice{
		Level:     types.NoticeLevelInfo,
		Operation: "sync",
		Message:   message,
		Details:   map[string]interface{}{"days": req.Days, "sync_id": result.SyncID, "triggered_by": performedBy},
	})

	h.writeJSON(w, map[string]interface{}{
		"success": true,
		"syncId":  result.SyncID,
		"message": message,
		"results": result.Results,
	})
}
