// Package store holds the in-memory expense collection.
//
// A Store is owned by whoever constructs it and is passed explicitly to the
// components that need it. Mutations notify subscribed listeners after the
// new snapshot is in place.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

type Store struct {
	mu        sync.Mutex
	items     []core.Expense // newest first
	version   uint64
	listeners map[int]Listener
	nextSub   int

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides identifier generation. Generated ids must be unique.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func New(opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]Listener),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.Must(uuid.NewV4()).String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded returns a store holding the example dataset used at session start:
// Groceries (now), Uber (a day earlier) and Netflix (two days earlier).
func NewSeeded(now time.Time, opts ...Option) *Store {
	s := New(opts...)
	now = now.UTC()
	s.items = []core.Expense{
		{ID: s.newID(), Title: "Groceries", Amount: decimal.RequireFromString("45.50"), Category: core.Food, Date: now},
		{ID: s.newID(), Title: "Uber", Amount: decimal.RequireFromString("12.00"), Category: core.Transport, Date: now.Add(-24 * time.Hour)},
		{ID: s.newID(), Title: "Netflix", Amount: decimal.RequireFromString("15.99"), Category: core.Entertainment, Date: now.Add(-48 * time.Hour)},
	}
	return s
}

// List returns a copy of the current sequence, newest first.
func (s *Store) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.items...), nil
}

func (s *Store) Get(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("get %q: %w", id, core.ErrNotFound)
	}
	return s.items[i], nil
}

// Len returns the number of stored expenses.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Version increases by one on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Create validates the input, assigns an id and creation date and prepends
// the new expense. Invalid input leaves the store unchanged.
func (s *Store) Create(_ context.Context, in core.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.mu.Lock()
	e := core.Expense{
		ID:       s.newID(),
		Title:    strings.TrimSpace(in.Title),
		Amount:   in.Amount,
		Category: in.Category,
		Date:     s.now(),
	}
	items := make([]core.Expense, 0, len(s.items)+1)
	items = append(items, e)
	s.items = append(items, s.items...)
	change := s.commit(OpCreate, e)
	s.mu.Unlock()

	s.notify(change)
	return e, nil
}

// Update merges the patch over the expense with the given id, keeping its
// position, id and creation date. An empty patch returns the record as is
// and is not a mutation.
func (s *Store) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	if err := patch.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("update %q: %w", id, err)
	}
	if patch.IsEmpty() {
		e, err := s.Get(ctx, id)
		if err != nil {
			return core.Expense{}, fmt.Errorf("update %q: %w", id, core.ErrNotFound)
		}
		return e, nil
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("update %q: %w", id, core.ErrNotFound)
	}
	e := patch.Apply(s.items[i])
	s.items[i] = e
	change := s.commit(OpUpdate, e)
	s.mu.Unlock()

	s.notify(change)
	return e, nil
}

// Delete removes the expense with the given id. It returns core.ErrNotFound
// when no such expense exists; the store is left unchanged in that case.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("delete %q: %w", id, core.ErrNotFound)
	}
	e := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	change := s.commit(OpDelete, e)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i, e := range s.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// commit must be called with mu held.
func (s *Store) commit(op Op, e core.Expense) Change {
	s.version++
	return Change{Op: op, Expense: e, Version: s.version}
}
