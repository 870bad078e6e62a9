package services

import (
	"context"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/store"
)

// Ports used by ExpenseService.
type (
	// ExpenseStore is the owned expense collection. *store.Store implements it.
	ExpenseStore interface {
		List(ctx context.Context) ([]core.Expense, error)
		Get(ctx context.Context, id string) (core.Expense, error)
		Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
		Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error)
		Delete(ctx context.Context, id string) error
		Version() uint64
		Subscribe(l store.Listener) (unsubscribe func())
	}

	// ChangeNotifier forwards store changes to an external system.
	// *amqp.Client implements it.
	ChangeNotifier interface {
		PublishExpenseChanged(ctx context.Context, msg *amqp.ExpenseChangedMessage) error
		Close() error
	}
)

var (
	_ ExpenseStore   = (*store.Store)(nil)
	_ ChangeNotifier = (*amqp.Client)(nil)
)
