package store

import (
	"sort"

	"expensetracker/internal/core"
)

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type (
	// Op names the mutation that produced a Change.
	Op string

	// Change describes one successful mutation. For deletes, Expense holds
	// the removed record.
	Change struct {
		Op      Op
		Expense core.Expense
		Version uint64
	}

	// Listener is called synchronously after each successful mutation.
	Listener func(Change)
)

// Subscribe registers l and returns a function that removes it. Listeners
// are called in subscription order, outside the store lock, so they may
// read the store.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(c Change) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(c)
	}
}
