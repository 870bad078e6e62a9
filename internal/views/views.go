// Package views computes the read-side projections of an expense list: the
// category/search filter, running totals, budget progress and the per-category
// breakdown. Every function is pure and recomputes from its inputs.
package views

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// DefaultBudgetLimit is the monthly budget used when none is configured.
var DefaultBudgetLimit = decimal.NewFromInt(2000)

var hundred = decimal.NewFromInt(100)

type (
	// Query holds the list parameters chosen in the presentation layer.
	Query struct {
		Category core.Category // CategoryAll or empty matches everything
		Search   string
	}

	BudgetProgress struct {
		Limit        decimal.Decimal
		RatioPercent float64 // clamped to [0, 100]
		OverBudget   bool
	}

	// CategoryShare is one row of the breakdown.
	CategoryShare struct {
		Category   core.Category
		Value      decimal.Decimal
		Percentage float64
	}
)

// FilterOptions lists the category filter choices, starting with CategoryAll.
func FilterOptions() []core.Category {
	return append([]core.Category{core.CategoryAll}, core.Categories()...)
}

// Apply filters expenses with the query.
func (q Query) Apply(expenses []core.Expense) []core.Expense {
	return Filter(expenses, q.Category, q.Search)
}

// Filter keeps the expenses in category (any category for CategoryAll or "")
// whose title contains search, case-insensitively. Search text is matched as
// given, whitespace included; only "" matches every title. Input order is
// preserved.
func Filter(expenses []core.Expense, category core.Category, search string) []core.Expense {
	needle := strings.ToLower(search)
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if category != "" && category != core.CategoryAll && e.Category != category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Title), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Total sums the amounts. It is zero for an empty list.
func Total(expenses []core.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// Progress reports how much of limit total uses. The ratio is clamped at 100
// for display; OverBudget tells whether the limit was actually exceeded.
// A non-positive limit counts as fully used as soon as anything is spent.
func Progress(total, limit decimal.Decimal) BudgetProgress {
	p := BudgetProgress{Limit: limit, OverBudget: total.GreaterThan(limit)}
	if !limit.IsPositive() {
		if total.IsPositive() {
			p.RatioPercent = 100
		}
		return p
	}
	ratio := total.Div(limit).Mul(hundred)
	if ratio.GreaterThan(hundred) {
		ratio = hundred
	}
	if ratio.IsNegative() {
		ratio = decimal.Zero
	}
	p.RatioPercent = ratio.InexactFloat64()
	return p
}

// Breakdown groups expenses by category, sorted by descending value. Groups
// with equal value keep the order in which their category first appears.
// It returns core.ErrNoData when there is nothing to break down, i.e. the
// list is empty or sums to zero.
func Breakdown(expenses []core.Expense) ([]CategoryShare, error) {
	var order []core.Category
	sums := make(map[core.Category]decimal.Decimal)
	for _, e := range expenses {
		if _, ok := sums[e.Category]; !ok {
			order = append(order, e.Category)
			sums[e.Category] = decimal.Zero
		}
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	grand := Total(expenses)
	if !grand.IsPositive() {
		return nil, core.ErrNoData
	}

	out := make([]CategoryShare, 0, len(order))
	for _, c := range order {
		v := sums[c]
		out = append(out, CategoryShare{
			Category:   c,
			Value:      v,
			Percentage: v.Div(grand).Mul(hundred).InexactFloat64(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	return out, nil
}
