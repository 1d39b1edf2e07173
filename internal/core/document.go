package core

import "sort"

// Document is the single in-memory dataset. Everything except UITransient is
// round-tripped to storage as one JSON object; transient view state is tagged
// out of serialization and rebuilt from defaults on every load.
type Document struct {
	Transactions  []Transaction `json:"transactions"`
	Goals         []SavingsGoal `json:"goals"`
	Notes         []Note        `json:"notes"`
	Budgets       Budgets       `json:"budgets"`
	Settings      Settings      `json:"settings"`
	UIPreferences UIPreferences `json:"uiPreferences"`
	UITransient   UITransient   `json:"-"`
}

// DefaultCategories seeds a fresh document. Kept sorted.
func DefaultCategories() []string {
	cats := []string{
		"Food", "Transport", "Utilities", "Salary", "Entertainment",
		"Shopping", "Health", "Other Expense", "Other Income",
	}
	sort.Strings(cats)
	return cats
}

// DefaultCurrency is a display label only; no conversion exists.
func DefaultCurrency() Currency {
	return Currency{Symbol: "₹", Code: "INR"}
}

// DefaultTransient returns the reset view state: no filters, date-descending
// sort, nothing being edited.
func DefaultTransient() UITransient {
	return UITransient{
		Filters: Filters{Type: FilterAll, Category: FilterAll},
		Sort:    SortSpec{Key: SortByDate, Direction: SortDesc},
	}
}

// DefaultDocument builds an empty dataset with seeded settings.
func DefaultDocument() Document {
	return Document{
		Transactions: []Transaction{},
		Goals:        []SavingsGoal{},
		Notes:        []Note{},
		Budgets: Budgets{
			Overall:    nil,
			Categories: map[string]BudgetEntry{},
		},
		Settings: Settings{
			Theme:              ThemeLight,
			Currency:           DefaultCurrency(),
			Categories:         DefaultCategories(),
			RecurringTemplates: []RecurringTemplate{},
		},
		UIPreferences: UIPreferences{
			ActiveSection:      SectionDashboard,
			IsSidebarCollapsed: false,
		},
		UITransient: DefaultTransient(),
	}
}

// Clone returns a deep copy. Callers of a store snapshot can mutate the copy
// freely without aliasing the owned document.
func (d Document) Clone() Document {
	out := d
	out.Transactions = append([]Transaction(nil), d.Transactions...)
	out.Goals = append([]SavingsGoal(nil), d.Goals...)
	out.Notes = append([]Note(nil), d.Notes...)
	out.Settings.Categories = append([]string(nil), d.Settings.Categories...)
	out.Settings.RecurringTemplates = append([]RecurringTemplate(nil), d.Settings.RecurringTemplates...)
	out.Budgets.Categories = make(map[string]BudgetEntry, len(d.Budgets.Categories))
	for k, v := range d.Budgets.Categories {
		out.Budgets.Categories[k] = v
	}
	if d.Budgets.Overall != nil {
		overall := *d.Budgets.Overall
		out.Budgets.Overall = &overall
	}
	return out
}
