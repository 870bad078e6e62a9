package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Entertainment Category = "Entertainment"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Other         Category = "Other"

	// CategoryAll is the filter sentinel that matches every category.
	// It is never a valid category for an expense.
	CategoryAll Category = "All"
)

// MaxTitleLength bounds the title of an expense.
const MaxTitleLength = 200

type (
	Category string

	Expense struct {
		ID       string
		Title    string
		Amount   decimal.Decimal
		Category Category
		Date     time.Time // creation instant, never changed by updates
	}

	// ExpenseInput carries the fields a caller controls when creating an expense.
	ExpenseInput struct {
		Title    string
		Amount   decimal.Decimal
		Category Category
	}

	// ExpensePatch carries the fields to replace on update. Nil fields are left unchanged.
	ExpensePatch struct {
		Title    *string
		Amount   *decimal.Decimal
		Category *Category
	}
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("expense not found")
	ErrNoData       = errors.New("no data")

	ErrEmptyTitle      = fmt.Errorf("%w: empty title", ErrInvalidInput)
	ErrTitleTooLong    = fmt.Errorf("%w: title too long (max %d characters)", ErrInvalidInput, MaxTitleLength)
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrInvalidCategory = fmt.Errorf("%w: invalid category", ErrInvalidInput)
)

var allCategories = []Category{Food, Transport, Entertainment, Shopping, Bills, Other}

// Categories returns the closed set of expense categories in display order.
func Categories() []Category {
	return append([]Category(nil), allCategories...)
}

// ParseCategory resolves a label to its canonical Category, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range allCategories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidCategory, s)
}

func (c Category) Valid() bool {
	for _, v := range allCategories {
		if c == v {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

func (c Category) Validate() error {
	if !c.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidCategory, string(c))
	}
	return nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func (in ExpenseInput) Validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}
	return in.Category.Validate()
}

// Validate checks only the fields present in the patch.
func (p ExpensePatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Amount != nil {
		if err := ValidateAmount(*p.Amount); err != nil {
			return err
		}
	}
	if p.Category != nil {
		return p.Category.Validate()
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Title == nil && p.Amount == nil && p.Category == nil
}

// Apply returns e with the patched fields replaced. ID and Date are preserved.
func (p ExpensePatch) Apply(e Expense) Expense {
	if p.Title != nil {
		e.Title = strings.TrimSpace(*p.Title)
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	return e
}
