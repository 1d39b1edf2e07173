// Package core holds the domain model and the pure calculation layer.
//
// Every function in this file is deterministic and side-effect free: it takes
// the transaction, goal, and budget data it needs as explicit input and never
// raises. Malformed rows (NaN amounts, unparseable dates) are skipped rather
// than treated as errors, so a partially damaged dataset still aggregates.
package core

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Summary is the global fold over all transactions.
type Summary struct {
	TotalIncome    float64
	TotalExpense   float64
	CurrentBalance float64
}

// Summarize computes total income, total expense, and the balance.
// TotalExpense is reported as a positive magnitude.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
			continue
		}
		if t.Amount > 0 {
			s.TotalIncome += t.Amount
		} else {
			s.TotalExpense += math.Abs(t.Amount)
		}
	}
	s.CurrentBalance = s.TotalIncome - s.TotalExpense
	return s
}

// GoalProgress is derived savings-goal state; never stored.
type GoalProgress struct {
	Progress  float64 // percent, clamped to [0, 100]
	Remaining float64 // >= 0
}

// GoalStatus measures a goal against the global balance. Multiple goals race
// against the same pool of money: the balance is not partitioned per goal.
// A missing or non-positive target yields a zeroed result.
func GoalStatus(goal SavingsGoal, currentBalance float64) GoalProgress {
	if math.IsNaN(goal.Target) || goal.Target <= 0 {
		return GoalProgress{}
	}
	contribution := math.Max(0, currentBalance)
	progress := math.Min(100, contribution/goal.Target*100)
	if math.IsNaN(progress) {
		progress = 0
	}
	return GoalProgress{
		Progress:  progress,
		Remaining: math.Max(0, goal.Target-contribution),
	}
}

// BudgetReport is the evaluated state of one spending limit.
type BudgetReport struct {
	Spent      float64
	Limit      float64
	Remaining  float64
	Percentage float64
	IsOver     bool
}

// BudgetStatus evaluates spending against a limit. Percentage is capped at
// 100 for display; the overspend signal lives in IsOver and in Remaining,
// which goes negative when the limit is exceeded.
func BudgetStatus(limit, spent float64) BudgetReport {
	if math.IsNaN(limit) {
		limit = 0
	}
	if math.IsNaN(spent) {
		spent = 0
	}
	percentage := 0.0
	switch {
	case limit > 0:
		percentage = math.Min(spent/limit*100, 100)
	case spent > 0:
		percentage = 100
	}
	return BudgetReport{
		Spent:      spent,
		Limit:      limit,
		Remaining:  limit - spent,
		Percentage: percentage,
		IsOver:     spent > limit,
	}
}

// MonthlyBreakdown is expense spending within one calendar month.
// ByCategory keys are lower-cased; uncategorized rows bucket under
// "uncategorized".
type MonthlyBreakdown struct {
	Total      float64
	ByCategory map[string]float64
}

// MonthlyExpenses restricts to expense rows whose date falls in the same UTC
// calendar year and month as ref. The fixed calendar avoids local-timezone
// drift at month boundaries.
func MonthlyExpenses(txs []Transaction, ref time.Time) MonthlyBreakdown {
	ref = ref.UTC()
	out := MonthlyBreakdown{ByCategory: map[string]float64{}}
	for _, t := range txs {
		if !t.IsExpense() || math.IsNaN(t.Amount) {
			continue
		}
		d := ParseDate(t.Date)
		if d.IsZero() || d.Year() != ref.Year() || d.Month() != ref.Month() {
			continue
		}
		amount := math.Abs(t.Amount)
		out.Total += amount
		out.ByCategory[categoryKey(t.Category)] += amount
	}
	return out
}

// CategoryTotal pairs a display label with an aggregated amount. The label
// keeps the first-seen original casing for its lower-cased key.
type CategoryTotal struct {
	Label  string
	Amount float64
}

// ExpenseByCategory aggregates absolute expense amounts by lower-cased
// category key. Income rows are excluded.
func ExpenseByCategory(txs []Transaction) map[string]CategoryTotal {
	out := map[string]CategoryTotal{}
	for _, t := range txs {
		if !t.IsExpense() || math.IsNaN(t.Amount) {
			continue
		}
		label := strings.TrimSpace(t.Category)
		if label == "" {
			label = UncategorizedLabel
		}
		key := strings.ToLower(label)
		cur, ok := out[key]
		if !ok {
			cur = CategoryTotal{Label: label}
		}
		cur.Amount += math.Abs(t.Amount)
		out[key] = cur
	}
	return out
}

// TrendSeries is a positionally paired label/value series: Labels[i] always
// describes the same month as Data[i].
type TrendSeries struct {
	Labels []string
	Data   []float64
}

// LastMonthsSpending builds n consecutive calendar-month buckets ending at
// ref's UTC month, oldest first, and sums absolute expense amounts into them.
// Months with no expenses report zero.
func LastMonthsSpending(txs []Transaction, n int, ref time.Time) TrendSeries {
	if n <= 0 {
		return TrendSeries{Labels: []string{}, Data: []float64{}}
	}
	ref = ref.UTC()
	firstMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(n - 1), 0)

	series := TrendSeries{
		Labels: make([]string, n),
		Data:   make([]float64, n),
	}
	index := map[string]int{}
	for i := 0; i < n; i++ {
		m := firstMonth.AddDate(0, i, 0)
		series.Labels[i] = m.Format("Jan 06")
		index[m.Format("2006-01")] = i
	}

	for _, t := range txs {
		if !t.IsExpense() || math.IsNaN(t.Amount) {
			continue
		}
		d := ParseDate(t.Date)
		if d.IsZero() {
			continue
		}
		if i, ok := index[d.Format("2006-01")]; ok {
			series.Data[i] += math.Abs(t.Amount)
		}
	}
	return series
}

// FilterAndSort applies the filter conjunction and then orders the result.
// The input slice is never mutated. Re-applying with identical parameters
// yields identical output.
func FilterAndSort(txs []Transaction, f Filters, s SortSpec) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if matches(t, f) {
			out = append(out, t)
		}
	}

	desc := s.Direction != SortAsc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		cmp := 0
		switch s.Key {
		case SortByAmount:
			cmp = compareFloat(a.Amount, b.Amount)
		case SortByCategory:
			cmp = strings.Compare(strings.ToLower(a.Category), strings.ToLower(b.Category))
		default:
			cmp = compareDates(a.Date, b.Date)
		}
		if cmp != 0 {
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		if s.Key != SortByDate && s.Key != "" {
			// Ties in a non-date sort break by date, newest first.
			return compareDates(a.Date, b.Date) > 0
		}
		return false
	})
	return out
}

func matches(t Transaction, f Filters) bool {
	switch f.Type {
	case FilterIncome:
		if t.Amount < 0 {
			return false
		}
	case FilterExpense:
		if t.Amount >= 0 {
			return false
		}
	}
	if f.Category != "" && f.Category != FilterAll {
		if !strings.EqualFold(t.Category, f.Category) {
			return false
		}
	}
	// Plain string comparison is calendar order for fixed-width dates.
	if f.DateStart != "" && t.Date < f.DateStart {
		return false
	}
	if f.DateEnd != "" && t.Date > f.DateEnd {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		inDescription := strings.Contains(strings.ToLower(t.Description), term)
		inCategory := strings.Contains(strings.ToLower(t.Category), term)
		if !inDescription && !inCategory {
			return false
		}
	}
	return true
}

func categoryKey(category string) string {
	key := strings.ToLower(strings.TrimSpace(category))
	if key == "" {
		return "uncategorized"
	}
	return key
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareDates orders by actual calendar date. Malformed dates sort first.
func compareDates(a, b string) int {
	ta, tb := ParseDate(a), ParseDate(b)
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	default:
		return 0
	}
}
