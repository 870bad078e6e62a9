package http

import (
	"errors"
	"net/http"

	"expensetracker/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, err := ParseListQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := s.api.Summary(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newSummaryResponse(sum))
}

// handleBreakdown reports no_data instead of an error when nothing has been
// spent, so clients can render an empty chart.
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	shares, err := s.api.Breakdown(r.Context())
	if errors.Is(err, core.ErrNoData) {
		writeJSON(w, r, http.StatusOK, breakdownResponse{NoData: true})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newBreakdownResponse(shares))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, newCategoriesResponse())
}
