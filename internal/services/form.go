package services

import (
	"fmt"
	"strings"

	"expensetracker/internal/core"
)

// FormInput is the raw text a user submits when adding an expense.
type FormInput struct {
	Title    string
	Amount   string
	Category string
}

// FormPatch is the raw text submitted when editing. Nil fields are untouched.
type FormPatch struct {
	Title    *string
	Amount   *string
	Category *string
}

// DefaultCategory is preselected when a new expense names no category.
const DefaultCategory = core.Food

// ParseForm turns raw form text into a validated expense input. An empty
// title or an amount that is not a number rejects the submission.
func ParseForm(f FormInput) (core.ExpenseInput, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return core.ExpenseInput{}, core.ErrEmptyTitle
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.ExpenseInput{}, fmt.Errorf("amount %q: %w", f.Amount, err)
	}
	category := DefaultCategory
	if strings.TrimSpace(f.Category) != "" {
		if category, err = core.ParseCategory(f.Category); err != nil {
			return core.ExpenseInput{}, err
		}
	}
	in := core.ExpenseInput{Title: title, Amount: amount, Category: category}
	if err := in.Validate(); err != nil {
		return core.ExpenseInput{}, err
	}
	return in, nil
}

// ParsePatch turns raw edit text into a validated patch.
func ParsePatch(f FormPatch) (core.ExpensePatch, error) {
	var p core.ExpensePatch
	if f.Title != nil {
		title := strings.TrimSpace(*f.Title)
		p.Title = &title
	}
	if f.Amount != nil {
		amount, err := core.ParseAmount(*f.Amount)
		if err != nil {
			return core.ExpensePatch{}, fmt.Errorf("amount %q: %w", *f.Amount, err)
		}
		p.Amount = &amount
	}
	if f.Category != nil {
		category, err := core.ParseCategory(*f.Category)
		if err != nil {
			return core.ExpensePatch{}, err
		}
		p.Category = &category
	}
	if err := p.Validate(); err != nil {
		return core.ExpensePatch{}, err
	}
	return p, nil
}
