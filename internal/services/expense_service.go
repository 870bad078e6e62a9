package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
	"expensetracker/internal/views"
)

// Empty-state reasons reported with a summary.
const (
	EmptyNoExpenses = "no_expenses"
	EmptyNoMatch    = "no_match"
)

// Summary is the list screen's view of the store: the filtered expenses,
// their total and the budget progress bar.
type Summary struct {
	Expenses    []core.Expense
	Total       decimal.Decimal
	Progress    views.BudgetProgress
	EmptyReason string
}

// ExpenseService is what the presentation layer calls. It owns no state
// beyond a breakdown memo; the store stays the single source of truth.
type ExpenseService struct {
	store       ExpenseStore
	notifier    ChangeNotifier
	logger      *applog.Logger
	budgetLimit decimal.Decimal

	breakdowns   *cache.LRUCache[[]views.CategoryShare]
	cacheManager *cache.Manager
	unsubscribe  func()
}

type Option func(*ExpenseService)

func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseService) { s.logger = l.WithComponent(applog.ComponentExpense) }
}

func WithBudgetLimit(limit decimal.Decimal) Option {
	return func(s *ExpenseService) { s.budgetLimit = limit }
}

// WithBreakdownCache sizes the breakdown memo.
func WithBreakdownCache(size int, ttl time.Duration) Option {
	return func(s *ExpenseService) { s.breakdowns = cache.NewLRUCache[[]views.CategoryShare](size, ttl) }
}

// NewExpenseService subscribes to st. notifier may be nil, in which case
// changes are not forwarded anywhere.
func NewExpenseService(st ExpenseStore, notifier ChangeNotifier, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:       st,
		notifier:    notifier,
		logger:      applog.Discard().WithComponent(applog.ComponentExpense),
		budgetLimit: views.DefaultBudgetLimit,
		breakdowns:  cache.NewLRUCache[[]views.CategoryShare](16, 5*time.Minute),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cacheManager = cache.NewManager(s.logger.Logger)
	s.cacheManager.Register(s.breakdowns)
	s.cacheManager.StartCleanup(time.Minute)
	s.unsubscribe = st.Subscribe(s.onChange)
	return s
}

// BudgetLimit returns the configured monthly limit.
func (s *ExpenseService) BudgetLimit() decimal.Decimal {
	return s.budgetLimit
}

// CreateExpense validates raw form input and stores a new expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, f FormInput) (core.Expense, error) {
	in, err := ParseForm(f)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected expense form", applog.FieldError, err, applog.FieldOperation, applog.OpValidate)
		return core.Expense{}, err
	}
	e, err := s.store.Create(ctx, in)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense created",
		applog.NewFields().WithOperation(applog.OpCreate).
			WithExpense(e.ID, e.Title, e.Amount, e.Category.String()).ToSlice()...)
	return e, nil
}

// UpdateExpense applies raw edit input to the expense with the given id.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, f FormPatch) (core.Expense, error) {
	patch, err := ParsePatch(f)
	if err != nil {
		return core.Expense{}, err
	}
	e, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense updated",
		applog.NewFields().WithOperation(applog.OpUpdate).
			WithExpense(e.ID, e.Title, e.Amount, e.Category.String()).ToSlice()...)
	return e, nil
}

// DeleteExpense removes the expense. Deleting an unknown id succeeds: the
// requested state is already reached.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		s.logger.DebugContext(ctx, "Delete of unknown expense ignored", applog.FieldExpenseID, id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id, applog.FieldOperation, applog.OpDelete)
	return nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return s.store.Get(ctx, id)
}

// ListExpenses returns the expenses matching q, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, q views.Query) ([]core.Expense, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return q.Apply(items), nil
}

// Summary filters the store with q and computes the total and budget progress
// of the filtered expenses.
func (s *ExpenseService) Summary(ctx context.Context, q views.Query) (Summary, error) {
	filtered, err := s.ListExpenses(ctx, q)
	if err != nil {
		return Summary{}, err
	}
	total := views.Total(filtered)
	sum := Summary{
		Expenses: filtered,
		Total:    total,
		Progress: views.Progress(total, s.budgetLimit),
	}
	if len(filtered) == 0 {
		sum.EmptyReason = EmptyNoExpenses
		all, err := s.ListExpenses(ctx, views.Query{})
		if err != nil {
			return Summary{}, err
		}
		if len(all) > 0 {
			sum.EmptyReason = EmptyNoMatch
		}
	}
	return sum, nil
}

// Breakdown returns per-category totals of the whole store, or core.ErrNoData
// when nothing has been spent. Results are memoised per store version.
func (s *ExpenseService) Breakdown(ctx context.Context) ([]views.CategoryShare, error) {
	key := strconv.FormatUint(s.store.Version(), 10)
	shares, hit, err := s.breakdowns.GetOrCompute(key, func() ([]views.CategoryShare, error) {
		items, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		return views.Breakdown(items)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		s.logger.DebugContext(ctx, "Breakdown cache hit", applog.FieldVersion, key)
	}
	return append([]views.CategoryShare(nil), shares...), nil
}

func (s *ExpenseService) onChange(c store.Change) {
	s.breakdowns.Purge()

	if s.notifier == nil {
		return
	}
	msg := amqp.NewExpenseChangedMessage(c.Expense.ID, string(c.Op), c.Version)
	if err := s.notifier.PublishExpenseChanged(context.Background(), msg); err != nil {
		s.logger.Error("Failed to publish expense change",
			applog.FieldError, err,
			applog.FieldExpenseID, c.Expense.ID,
			applog.FieldOperation, applog.OpPublish,
			applog.FieldVersion, c.Version)
	}
}

// Close detaches from the store and releases the notifier.
func (s *ExpenseService) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.cacheManager != nil {
		s.cacheManager.Stop()
	}
	if s.notifier != nil {
		if err := s.notifier.Close(); err != nil {
			return fmt.Errorf("close notifier: %w", err)
		}
	}
	return nil
}
