package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	"expensetracker/internal/views"
)

type (
	expenseResponse struct {
		ID       string    `json:"id"`
		Title    string    `json:"title"`
		Amount   string    `json:"amount"`
		Category string    `json:"category"`
		Color    string    `json:"color"`
		Date     time.Time `json:"date"`
	}

	listResponse struct {
		Expenses    []expenseResponse `json:"expenses"`
		Count       int               `json:"count"`
		Total       string            `json:"total"`
		EmptyReason string            `json:"empty_reason,omitempty"`
	}

	summaryResponse struct {
		Count        int     `json:"count"`
		Total        string  `json:"total"`
		BudgetLimit  string  `json:"budget_limit"`
		RatioPercent float64 `json:"ratio_percent"`
		OverBudget   bool    `json:"over_budget"`
	}

	shareResponse struct {
		Category   string  `json:"category"`
		Color      string  `json:"color"`
		Value      string  `json:"value"`
		Percentage float64 `json:"percentage"`
	}

	breakdownResponse struct {
		NoData bool            `json:"no_data,omitempty"`
		Total  string          `json:"total,omitempty"`
		Shares []shareResponse `json:"shares,omitempty"`
	}

	categoriesResponse struct {
		Filters    []string            `json:"filters"`
		Categories []core.CategoryInfo `json:"categories"`
	}

	errorResponse struct {
		Error     string `json:"error"`
		RequestID string `json:"request_id,omitempty"`
	}
)

func newExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:       e.ID,
		Title:    e.Title,
		Amount:   core.FormatAmount(e.Amount),
		Category: e.Category.String(),
		Color:    e.Category.Color(),
		Date:     e.Date,
	}
}

func newListResponse(sum services.Summary) listResponse {
	out := listResponse{
		Expenses:    make([]expenseResponse, 0, len(sum.Expenses)),
		Count:       len(sum.Expenses),
		Total:       core.FormatAmount(sum.Total),
		EmptyReason: sum.EmptyReason,
	}
	for _, e := range sum.Expenses {
		out.Expenses = append(out.Expenses, newExpenseResponse(e))
	}
	return out
}

func newSummaryResponse(sum services.Summary) summaryResponse {
	return summaryResponse{
		Count:        len(sum.Expenses),
		Total:        core.FormatAmount(sum.Total),
		BudgetLimit:  core.FormatAmount(sum.Progress.Limit),
		RatioPercent: sum.Progress.RatioPercent,
		OverBudget:   sum.Progress.OverBudget,
	}
}

func newBreakdownResponse(shares []views.CategoryShare) breakdownResponse {
	out := breakdownResponse{Shares: make([]shareResponse, 0, len(shares))}
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Value)
		out.Shares = append(out.Shares, shareResponse{
			Category:   s.Category.String(),
			Color:      s.Category.Color(),
			Value:      core.FormatAmount(s.Value),
			Percentage: s.Percentage,
		})
	}
	out.Total = core.FormatAmount(total)
	return out
}

func newCategoriesResponse() categoriesResponse {
	filters := views.FilterOptions()
	out := categoriesResponse{
		Filters:    make([]string, len(filters)),
		Categories: core.Palette(),
	}
	for i, c := range filters {
		out.Filters[i] = c.String()
	}
	return out
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as JSON. Server errors are logged and their detail
// hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err, applog.FieldPath, r.URL.Path)
		msg = http.StatusText(status)
	}
	writeJSON(w, r, status, errorResponse{Error: msg, RequestID: trace.GetRequestID(r.Context())})
}
