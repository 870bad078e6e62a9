// Package http serves the expense tracker's JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	"expensetracker/internal/views"
)

// ExpenseAPI is the application surface the handlers call.
// *services.ExpenseService implements it.
type ExpenseAPI interface {
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	CreateExpense(ctx context.Context, f services.FormInput) (core.Expense, error)
	UpdateExpense(ctx context.Context, id string, f services.FormPatch) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	Summary(ctx context.Context, q views.Query) (services.Summary, error)
	Breakdown(ctx context.Context) ([]views.CategoryShare, error)
	BudgetLimit() decimal.Decimal
}

var _ ExpenseAPI = (*services.ExpenseService)(nil)

type Server struct {
	http.Server
	api        ExpenseAPI
	logger     *applog.Logger
	limiter    *ratelimit.Limiter
	ipResolver *security.IPResolver
	tracer     *trace.Middleware

	ready        atomic.Bool
	shutdownOnce sync.Once
}

// Options tunes the server. The zero value is usable.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, api ExpenseAPI, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}

	s := &Server{
		api:        api,
		logger:     logger.WithComponent(applog.ComponentHTTP),
		ipResolver: security.NewIPResolver(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Logger:            logger,
		}),
	}
	s.tracer = trace.NewMiddleware(logger, s.ipResolver.ClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.Handle("POST /expenses", s.limited(s.handleCreateExpense))
	mux.Handle("PATCH /expenses/{id}", s.limited(s.handleUpdateExpense))
	mux.Handle("DELETE /expenses/{id}", s.limited(s.handleDeleteExpense))

	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /breakdown", s.handleBreakdown)
	mux.HandleFunc("GET /categories", s.handleCategories)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.ready.Store(true)
	return s
}

// limited applies the per-client rate limit to mutating routes.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.ipResolver.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusTooManyRequests, errorResponse{
			Error:     "rate limit exceeded, try again later",
			RequestID: trace.GetRequestID(r.Context()),
		})
	})(h)
}

// Shutdown marks the server unready, stops the rate limiter and drains
// in-flight requests. Only the first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.ready.Store(false)
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
