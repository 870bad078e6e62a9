// Package worker consumes the expense change feed published by the API.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store"
)

const (
	dedupeWindowSize = 10000
	dedupeWindowTTL  = 24 * time.Hour
)

// Stats counts the changes a worker has applied.
type Stats struct {
	Created     int
	Updated     int
	Deleted     int
	Duplicates  int
	Rejected    int
	LastVersion uint64
}

// Total returns the number of changes applied, duplicates excluded.
func (s Stats) Total() int {
	return s.Created + s.Updated + s.Deleted
}

// ChangeWorker tallies expense change messages. Redelivered or reordered
// messages for an expense whose newer version was already seen are counted
// as duplicates and otherwise ignored.
type ChangeWorker struct {
	logger *applog.Logger

	mu    sync.Mutex
	seen  *cache.LRUCache[uint64] // expense id -> highest version applied
	stats Stats
}

func NewChangeWorker(logger *applog.Logger) *ChangeWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ChangeWorker{
		logger: logger.WithComponent(applog.ComponentAMQP),
		seen:   cache.NewLRUCache[uint64](dedupeWindowSize, dedupeWindowTTL),
	}
}

// Cache exposes the de-duplication window so its expired entries can be
// cleaned by a cache.Manager.
func (w *ChangeWorker) Cache() cache.Cleaner {
	return w.seen
}

// HandleChange applies one message. Malformed messages are logged and
// dropped rather than returned, since redelivery cannot fix them.
func (w *ChangeWorker) HandleChange(ctx context.Context, msg *amqp.ExpenseChangedMessage) error {
	if err := validate(msg); err != nil {
		w.mu.Lock()
		w.stats.Rejected++
		w.mu.Unlock()
		w.logger.WarnContext(ctx, "Dropping malformed change message", applog.FieldError, err)
		return nil
	}

	w.mu.Lock()
	if last, ok := w.seen.Get(msg.ID); ok && last >= msg.Version {
		w.stats.Duplicates++
		w.mu.Unlock()
		w.logger.DebugContext(ctx, "Ignoring stale change message",
			applog.FieldExpenseID, msg.ID, applog.FieldVersion, msg.Version)
		return nil
	}
	w.seen.Set(msg.ID, msg.Version)
	switch store.Op(msg.Op) {
	case store.OpCreate:
		w.stats.Created++
	case store.OpUpdate:
		w.stats.Updated++
	case store.OpDelete:
		w.stats.Deleted++
	}
	if msg.Version > w.stats.LastVersion {
		w.stats.LastVersion = msg.Version
	}
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Expense change received",
		applog.FieldExpenseID, msg.ID,
		applog.FieldOperation, msg.Op,
		applog.FieldVersion, msg.Version,
		"published_at", msg.Timestamp)
	return nil
}

func validate(msg *amqp.ExpenseChangedMessage) error {
	if msg == nil {
		return fmt.Errorf("nil message")
	}
	if msg.ID == "" {
		return fmt.Errorf("missing expense id")
	}
	switch store.Op(msg.Op) {
	case store.OpCreate, store.OpUpdate, store.OpDelete:
		return nil
	default:
		return fmt.Errorf("unknown op %q", msg.Op)
	}
}

func (w *ChangeWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// ReportEvery logs the running tally at each interval until ctx is done.
func (w *ChangeWorker) ReportEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := w.Stats()
			w.logger.InfoContext(ctx, "Change feed summary",
				"created", s.Created,
				"updated", s.Updated,
				"deleted", s.Deleted,
				"duplicates", s.Duplicates,
				"rejected", s.Rejected,
				applog.FieldVersion, s.LastVersion)
		}
	}
}
