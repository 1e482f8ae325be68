package handlers

import (
	"net/http"
	"strconv"

	"github.com/regpulse-io/regpulse/internal/backend"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// Pagination bounds for the agency listing.
const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// ListAgencies returns agencies with aggregate alert statistics, filtered
// and paginated.
func (h *Handlers) ListAgencies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	result, err := h.backend.GetAgenciesWithStats(r.Context(), backend.AgencyQuery{
		Search:       q.Get("search"),
		Source:       q.Get("source"),
		Status:       q.Get("status"),
		Jurisdiction: q.Get("jurisdiction"),
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "failed to list agencies", err)
		return
	}

	if result.Agencies == nil {
		result.Agencies = []types.Agency{}
	}
	if result.Sources == nil {
		result.Sources = []string{}
	}
	if result.Jurisdictions == nil {
		result.Jurisdictions = []string{}
	}
	h.writeJSON(w, map[string]interface{}{
		"agencies":      result.Agencies,
		"total":         result.Total,
		"sources":       result.Sources,
		"jurisdictions": result.Jurisdictions,
	})
}
