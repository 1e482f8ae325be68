package handlers

import (
	"net/http"
	"strings"
)

// searchFilters builds the filter set from recognized query parameters.
func searchFilters(r *http.Request) map[string]interface{} {
	filters := make(map[string]interface{})
	for _, name := range []string{"source", "status", "jurisdiction", "agency"} {
		if v := r.URL.Query().Get(name); v != "" {
			filters[name] = v
		}
	}
	return filters
}

// Search runs a full-text alert search, serving repeated queries from the
// result cache.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "q is required", nil)
		return
	}
	filters := searchFilters(r)

	if cached, ok := h.cache.Get(r.Context(), query, filters); ok {
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(cached)
		return
	}

	result, err := h.backend.SearchAlerts(r.Context(), query, filters)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "search failed", err)
		return
	}

	h.cache.Put(r.Context(), query, filters, result)
	w.Header().Set("X-Cache", "MISS")
	_, _ = w.Write(result)
}
