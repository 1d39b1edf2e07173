package core

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"time"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Section names stored in uiPreferences.activeSection.
const (
	SectionDashboard = "dashboard"
	SectionFinance   = "finance"
	SectionBudgets   = "budgets"
	SectionGoals     = "goals"
	SectionNotes     = "notes"
	SectionSettings  = "settings"
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrZeroAmount       = errors.New("amount cannot be zero")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrCategoryOnIncome = errors.New("category is only valid for expenses")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyText        = errors.New("empty note text")
	ErrInvalidTarget    = errors.New("target must be a positive amount")
)

// DateLayout is the fixed-width calendar date format used everywhere in the
// document. Lexicographic order of two dates in this form matches calendar
// order, which the transaction date-range filter relies on.
const DateLayout = "2006-01-02"

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidDate reports whether s is a real calendar date in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
// Returns the zero time if s is malformed.
func ParseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// FormatDate renders t as a YYYY-MM-DD string in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

type (
	// Transaction is a single signed monetary event. A positive amount is
	// income, a negative amount is an expense. The date, not the creation
	// timestamp, is the ordering key for financial grouping.
	Transaction struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Date        string  `json:"date"`
		Timestamp   int64   `json:"timestamp"`
	}

	// SavingsGoal tracks a target amount. Progress is derived from the
	// global balance at render time and never stored.
	SavingsGoal struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Target      float64 `json:"target"`
		CreatedAt   string  `json:"createdAt"`
	}

	// Note is free-form text; the creation timestamp is also the sort key.
	Note struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		Timestamp int64  `json:"timestamp"`
	}

	// BudgetEntry is a monthly spending limit.
	BudgetEntry struct {
		Amount float64 `json:"amount"`
	}

	// Budgets holds the optional overall cap and the per-category limits.
	// Category keys preserve their original casing; lookups against them
	// are case-insensitive.
	Budgets struct {
		Overall    *BudgetEntry           `json:"overall"`
		Categories map[string]BudgetEntry `json:"categories"`
	}

	// Currency is a display label pair. No conversion happens anywhere.
	Currency struct {
		Symbol string `json:"symbol"`
		Code   string `json:"code"`
	}

	// RecurringTemplate is a saved transaction shape. Its ID is the ID of
	// the transaction that originated it, a back-reference rather than
	// ownership.
	RecurringTemplate struct {
		ID          string  `json:"id"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
	}

	Settings struct {
		Theme              string              `json:"theme"`
		Currency           Currency            `json:"currency"`
		Categories         []string            `json:"categories"`
		RecurringTemplates []RecurringTemplate `json:"recurringTemplates"`
	}

	// UIPreferences are persisted view preferences.
	UIPreferences struct {
		ActiveSection      string `json:"activeSection"`
		IsSidebarCollapsed bool   `json:"isSidebarCollapsed"`
	}

	// Filters is the conjunction of transaction list predicates.
	Filters struct {
		Type       string
		Category   string
		DateStart  string
		DateEnd    string
		SearchTerm string
	}

	// SortSpec selects the transaction list ordering.
	SortSpec struct {
		Key       string
		Direction string
	}

	// UITransient is view state that is never persisted and resets to
	// defaults on every load.
	UITransient struct {
		Filters         Filters
		Sort            SortSpec
		NotesSearchTerm string
		EditingItemID   string
	}
)

// Filter and sort vocabulary.
const (
	FilterAll     = "all"
	FilterIncome  = "income"
	FilterExpense = "expense"

	SortByDate     = "date"
	SortByAmount   = "amount"
	SortByCategory = "category"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// UncategorizedLabel is assigned to expenses entered without a category.
const UncategorizedLabel = "Uncategorized"

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if t.Amount == 0 {
		return ErrZeroAmount
	}
	if !ValidDate(t.Date) {
		return ErrInvalidDate
	}
	if t.Amount > 0 && strings.TrimSpace(t.Category) != "" {
		return ErrCategoryOnIncome
	}
	if t.Amount < 0 && strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Description) == "" {
		return ErrEmptyDescription
	}
	if math.IsNaN(g.Target) || g.Target <= 0 {
		return ErrInvalidTarget
	}
	if g.CreatedAt != "" && !ValidDate(g.CreatedAt) {
		return ErrInvalidDate
	}
	return nil
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// IsExpense reports whether the transaction is an expense row.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}
