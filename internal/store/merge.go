package store

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"fintrack/internal/core"
)

// rawDocument mirrors the persisted JSON shape with pointer fields so that
// absent and present-but-empty can be told apart during merge.
type rawDocument struct {
	Transactions  *[]core.Transaction `json:"transactions"`
	Goals         *[]core.SavingsGoal `json:"goals"`
	Notes         *[]core.Note        `json:"notes"`
	Budgets       *rawBudgets         `json:"budgets"`
	Settings      *rawSettings        `json:"settings"`
	UIPreferences *rawPreferences     `json:"uiPreferences"`
}

type rawBudgets struct {
	Overall    *core.BudgetEntry           `json:"overall"`
	Categories map[string]core.BudgetEntry `json:"categories"`
}

type rawSettings struct {
	Theme              string                     `json:"theme"`
	Currency           *core.Currency             `json:"currency"`
	Categories         *[]string                  `json:"categories"`
	RecurringTemplates *[]core.RecurringTemplate `json:"recurringTemplates"`
}

type rawPreferences struct {
	ActiveSection      string `json:"activeSection"`
	IsSidebarCollapsed bool   `json:"isSidebarCollapsed"`
}

func decodeRaw(data []byte) (rawDocument, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return rawDocument{}, err
	}
	return raw, nil
}

// recognizable reports whether the shape passes the minimal validity check:
// a transaction list (even empty) and a settings record must both exist.
// Anything else is corruption, not a merge candidate.
func (r rawDocument) recognizable() bool {
	return r.Transactions != nil && r.Settings != nil
}

// merge fills every missing or malformed field from defaults instead of
// failing; the returned document is always fully formed. Transient view
// state is unconditionally reset.
func merge(raw rawDocument, defaults core.Document) core.Document {
	doc := defaults.Clone()

	if raw.Transactions != nil {
		doc.Transactions = append([]core.Transaction{}, *raw.Transactions...)
	}
	if raw.Goals != nil {
		doc.Goals = append([]core.SavingsGoal{}, *raw.Goals...)
	}
	if raw.Notes != nil {
		doc.Notes = append([]core.Note{}, *raw.Notes...)
	}

	doc.Budgets = core.Budgets{Categories: map[string]core.BudgetEntry{}}
	if raw.Budgets != nil {
		if e := raw.Budgets.Overall; e != nil && validLimit(e.Amount) {
			entry := *e
			doc.Budgets.Overall = &entry
		}
		for name, entry := range raw.Budgets.Categories {
			if strings.TrimSpace(name) != "" && validLimit(entry.Amount) {
				doc.Budgets.Categories[name] = entry
			}
		}
	}

	if s := raw.Settings; s != nil {
		if s.Theme == core.ThemeLight || s.Theme == core.ThemeDark {
			doc.Settings.Theme = s.Theme
		}
		if s.Currency != nil && s.Currency.Symbol != "" && s.Currency.Code != "" {
			doc.Settings.Currency = *s.Currency
		}
		if s.Categories != nil && len(*s.Categories) > 0 {
			doc.Settings.Categories = dedupeCategories(*s.Categories)
		}
		if s.RecurringTemplates != nil {
			doc.Settings.RecurringTemplates = append([]core.RecurringTemplate{}, *s.RecurringTemplates...)
		}
	}

	if p := raw.UIPreferences; p != nil {
		if validSection(p.ActiveSection) {
			doc.UIPreferences.ActiveSection = p.ActiveSection
		}
		doc.UIPreferences.IsSidebarCollapsed = p.IsSidebarCollapsed
	}

	doc.UITransient = core.DefaultTransient()
	return doc
}

// dedupeCategories removes case-insensitive duplicates, keeping the first
// occurrence's casing, and returns the result sorted.
func dedupeCategories(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func validLimit(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0) && amount >= 0
}

func validSection(s string) bool {
	switch s {
	case core.SectionDashboard, core.SectionFinance, core.SectionBudgets,
		core.SectionGoals, core.SectionNotes, core.SectionSettings:
		return true
	}
	return false
}
