package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewSeeded(fixedNow, WithClock(func() time.Time { return fixedNow }), WithIDGenerator(sequentialIDs()))
}

func ids(items []core.Expense) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.ID
	}
	return out
}

func TestNewSeeded(t *testing.T) {
	s := newTestStore(t)
	items, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "Groceries", items[0].Title)
	assert.Equal(t, core.Food, items[0].Category)
	assert.True(t, items[0].Amount.Equal(decimal.RequireFromString("45.50")))
	assert.Equal(t, fixedNow, items[0].Date)

	assert.Equal(t, "Uber", items[1].Title)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), items[1].Date)

	assert.Equal(t, "Netflix", items[2].Title)
	assert.Equal(t, core.Entertainment, items[2].Category)
	assert.Equal(t, fixedNow.Add(-48*time.Hour), items[2].Date)

	assert.Equal(t, uint64(0), s.Version())
}

func TestNewUsesUUIDs(t *testing.T) {
	s := New()
	a, err := s.Create(context.Background(), core.ExpenseInput{Title: "a", Amount: decimal.NewFromInt(1), Category: core.Other})
	require.NoError(t, err)
	b, err := s.Create(context.Background(), core.ExpenseInput{Title: "b", Amount: decimal.NewFromInt(1), Category: core.Other})
	require.NoError(t, err)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Date.IsZero())
}

func TestCreatePrependsAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	before, _ := s.List(ctx)

	e, err := s.Create(ctx, core.ExpenseInput{Title: "  Coffee ", Amount: decimal.RequireFromString("3.20"), Category: core.Food})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", e.Title)
	assert.Equal(t, fixedNow, e.Date)

	after, _ := s.List(ctx)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, e, after[0])
	assert.Equal(t, ids(before), ids(after[1:]))
	assert.Equal(t, uint64(1), s.Version())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	bad := []core.ExpenseInput{
		{Title: "", Amount: decimal.NewFromInt(10), Category: core.Food},
		{Title: "x", Amount: decimal.NewFromInt(-1), Category: core.Food},
		{Title: "x", Amount: decimal.NewFromInt(1), Category: core.CategoryAll},
	}
	for _, in := range bad {
		_, err := s.Create(ctx, in)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	}
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, uint64(0), s.Version())
}

func TestUpdateMergesInPlace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	before, _ := s.List(ctx)
	target := before[1]

	amount := decimal.RequireFromString("14.75")
	got, err := s.Update(ctx, target.ID, core.ExpensePatch{Amount: &amount})
	require.NoError(t, err)

	assert.Equal(t, target.ID, got.ID)
	assert.Equal(t, target.Title, got.Title)
	assert.Equal(t, target.Category, got.Category)
	assert.Equal(t, target.Date, got.Date)
	assert.True(t, got.Amount.Equal(amount))

	after, _ := s.List(ctx)
	assert.Equal(t, ids(before), ids(after))
	assert.Equal(t, got, after[1])
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	title := "x"
	_, err := s.Update(ctx, "missing", core.ExpensePatch{Title: &title})
	assert.ErrorIs(t, err, core.ErrNotFound)

	items, _ := s.List(ctx)
	empty := " "
	_, err = s.Update(ctx, items[0].ID, core.ExpensePatch{Title: &empty})
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	after, _ := s.List(ctx)
	assert.Equal(t, items, after)
	assert.Equal(t, uint64(0), s.Version())
}

func TestUpdateWithEmptyPatchIsNotAMutation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	items, _ := s.List(ctx)

	notified := 0
	s.Subscribe(func(Change) { notified++ })

	got, err := s.Update(ctx, items[0].ID, core.ExpensePatch{})
	require.NoError(t, err)
	assert.Equal(t, items[0], got)
	assert.Equal(t, uint64(0), s.Version())
	assert.Zero(t, notified)

	_, err = s.Update(ctx, "missing", core.ExpensePatch{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	before, _ := s.List(ctx)

	require.NoError(t, s.Delete(ctx, before[1].ID))
	after, _ := s.List(ctx)
	require.Len(t, after, 2)
	assert.Equal(t, []string{before[0].ID, before[2].ID}, ids(after))

	err := s.Delete(ctx, before[1].ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	again, _ := s.List(ctx)
	assert.Equal(t, after, again)
	assert.Equal(t, uint64(1), s.Version())

	_, err = s.Get(ctx, before[1].ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	items, _ := s.List(ctx)
	items[0].Title = "mutated"

	fresh, _ := s.List(ctx)
	assert.Equal(t, "Groceries", fresh[0].Title)
}

func TestSubscribeReceivesChanges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var got []Change
	unsubscribe := s.Subscribe(func(c Change) {
		// listeners may read the store
		assert.Equal(t, c.Version, s.Version())
		got = append(got, c)
	})

	e, err := s.Create(ctx, core.ExpenseInput{Title: "Bus", Amount: decimal.NewFromInt(2), Category: core.Transport})
	require.NoError(t, err)
	title := "Train"
	_, err = s.Update(ctx, e.ID, core.ExpensePatch{Title: &title})
	require.NoError(t, err)
	_, _ = s.Create(ctx, core.ExpenseInput{Title: "", Amount: decimal.NewFromInt(1), Category: core.Food})
	_ = s.Delete(ctx, "missing")
	require.NoError(t, s.Delete(ctx, e.ID))

	require.Len(t, got, 3)
	assert.Equal(t, []Op{OpCreate, OpUpdate, OpDelete}, []Op{got[0].Op, got[1].Op, got[2].Op})
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{got[0].Version, got[1].Version, got[2].Version})
	assert.Equal(t, "Train", got[2].Expense.Title)

	unsubscribe()
	_, _ = s.Create(ctx, core.ExpenseInput{Title: "Taxi", Amount: decimal.NewFromInt(20), Category: core.Transport})
	assert.Len(t, got, 3)
}

func TestRandomizedMutationsKeepInvariants(t *testing.T) {
	ctx := context.Background()
	faker := gofakeit.New(42)
	s := New(WithIDGenerator(sequentialIDs()))
	cats := core.Categories()

	for i := 0; i < 200; i++ {
		before, _ := s.List(ctx)
		switch {
		case len(before) == 0 || faker.Number(0, 2) == 0:
			in := core.ExpenseInput{
				Title:    faker.Word(),
				Amount:   decimal.NewFromFloat(faker.Price(0, 500)).Round(2),
				Category: cats[faker.Number(0, len(cats)-1)],
			}
			e, err := s.Create(ctx, in)
			require.NoError(t, err)
			after, _ := s.List(ctx)
			require.Equal(t, e.ID, after[0].ID)
			require.Equal(t, ids(before), ids(after[1:]))
		case faker.Bool():
			target := before[faker.Number(0, len(before)-1)]
			title := faker.Word()
			got, err := s.Update(ctx, target.ID, core.ExpensePatch{Title: &title})
			require.NoError(t, err)
			require.Equal(t, target.Date, got.Date)
			require.True(t, target.Amount.Equal(got.Amount))
			after, _ := s.List(ctx)
			require.Equal(t, ids(before), ids(after))
		default:
			target := before[faker.Number(0, len(before)-1)]
			require.NoError(t, s.Delete(ctx, target.ID))
			after, _ := s.List(ctx)
			require.Len(t, after, len(before)-1)
			require.NotContains(t, ids(after), target.ID)
		}
	}

	items, _ := s.List(ctx)
	seen := map[string]bool{}
	for _, e := range items {
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}
