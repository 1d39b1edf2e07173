// Package app wires user actions to the store and the presenter.
//
// Every handler follows the same shape: validate input, apply the granular
// store mutation, persist, then re-render the affected views from a fresh
// snapshot and toast the outcome. Destructive actions resolve a confirmation
// first; a declined confirmation leaves the document untouched.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"fintrack/internal/backup"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/ui"
)

// ErrCancelled reports a destructive action the user declined.
var ErrCancelled = errors.New("cancelled by user")

// ErrUnknownCurrency reports a currency code outside the supported set.
var ErrUnknownCurrency = errors.New("unknown currency code")

// currencies maps supported codes to their display pair.
var currencies = map[string]core.Currency{
	"INR": {Symbol: "₹", Code: "INR"},
	"USD": {Symbol: "$", Code: "USD"},
	"EUR": {Symbol: "€", Code: "EUR"},
	"GBP": {Symbol: "£", Code: "GBP"},
	"JPY": {Symbol: "¥", Code: "JPY"},
}

const recentTransactionLimit = 5

// TransactionInput is the raw form content for an add or edit.
type TransactionInput struct {
	Description string
	Amount      float64 // positive magnitude; Type carries the sign
	Type        string  // core.FilterIncome or core.FilterExpense
	Category    string
	Date        string
	Recurring   bool
}

// signed returns the stored amount: income positive, expense negative.
func (in TransactionInput) signed() float64 {
	if in.Type == core.FilterExpense {
		return -math.Abs(in.Amount)
	}
	return math.Abs(in.Amount)
}

type Controller struct {
	store       *store.Store
	presenter   ui.Presenter
	log         *log.Logger
	trendMonths int
	now         func() time.Time
}

type Option func(*Controller)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithTrendMonths sets how many months the spending trend covers.
func WithTrendMonths(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.trendMonths = n
		}
	}
}

func New(s *store.Store, p ui.Presenter, logger *log.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:       s,
		presenter:   p,
		log:         logger,
		trendMonths: 6,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start loads the persisted document, applies the stored theme, and renders
// the last active section. A corrupt record is reported but not fatal: the
// app continues from defaults.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.store.Load(ctx); err != nil {
		if errors.Is(err, store.ErrCorruptData) {
			c.log.Warn("discarded corrupt saved data", log.FieldError, err)
			c.presenter.ShowToast("Saved data was unreadable and has been reset.", ui.SeverityError)
		} else {
			return fmt.Errorf("load document: %w", err)
		}
	}
	snap := c.store.Snapshot()
	c.presenter.ApplyTheme(snap.Settings.Theme)
	c.renderSection(snap, snap.UIPreferences.ActiveSection)
	return nil
}

// --- Transactions ---

func (c *Controller) AddTransaction(ctx context.Context, in TransactionInput) error {
	tx := core.Transaction{
		ID:          core.NewID("txn"),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.signed(),
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
		Timestamp:   c.now().UnixMilli(),
	}
	if err := tx.Validate(); err != nil {
		c.presenter.ShowToast(err.Error(), ui.SeverityError)
		return err
	}

	if tx.IsExpense() {
		// A new category on an expense registers globally.
		c.store.AddCategory(tx.Category)
	}
	c.store.AddTransaction(tx)
	if in.Recurring {
		c.store.AddRecurringTemplate(core.RecurringTemplate{
			ID:          tx.ID,
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.Category,
		})
	}

	c.persist(ctx)
	c.log.Info("transaction added", log.FieldEntityID, tx.ID, log.FieldAmount, tx.Amount)
	c.renderAffected(core.SectionFinance)
	c.presenter.ShowToast("Transaction added.", ui.SeveritySuccess)
	return nil
}

func (c *Controller) UpdateTransaction(ctx context.Context, id string, in TransactionInput) error {
	tx := core.Transaction{
		ID:          id,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.signed(),
		Category:    strings.TrimSpace(in.Category),
		Date:        in.Date,
	}
	if err := tx.Validate(); err != nil {
		c.presenter.ShowToast(err.Error(), ui.SeverityError)
		return err
	}

	if tx.IsExpense() {
		c.store.AddCategory(tx.Category)
	}
	if err := c.store.UpdateTransaction(tx); err != nil {
		c.presenter.ShowToast("Transaction not found.", ui.SeverityError)
		return err
	}
	c.store.SetEditingItem("")

	c.persist(ctx)
	c.renderAffected(core.SectionFinance)
	c.presenter.ShowToast("Transaction updated.", ui.SeveritySuccess)
	return nil
}

// DeleteTransaction removes a transaction after confirmation. A recurring
// template originated by this transaction is removed along with it.
func (c *Controller) DeleteTransaction(ctx context.Context, id string) error {
	if !c.presenter.Confirm("Delete this transaction?") {
		return ErrCancelled
	}
	if err := c.store.DeleteTransaction(id); err != nil {
		c.presenter.ShowToast("Transaction not found.", ui.SeverityError)
		return err
	}
	c.store.RemoveRecurringTemplate(id)

	c.persist(ctx)
	c.renderAffected(core.SectionFinance)
	c.presenter.ShowToast("Transaction deleted.", ui.SeveritySuccess)
	return nil
}

// AddFromTemplate instantiates a recurring template as a new transaction
// dated today, after confirmation.
func (c *Controller) AddFromTemplate(ctx context.Context, templateID string) error {
	snap := c.store.Snapshot()
	var tmpl *core.RecurringTemplate
	for i, t := range snap.Settings.RecurringTemplates {
		if t.ID == templateID {
			tmpl = &snap.Settings.RecurringTemplates[i]
			break
		}
	}
	if tmpl == nil {
		c.presenter.ShowToast("Recurring template not found.", ui.SeverityError)
		return fmt.Errorf("template %s: %w", templateID, store.ErrNotFound)
	}

	prompt := fmt.Sprintf("Add %q (%s) for today?", tmpl.Description,
		formatAmount(snap.Settings.Currency, tmpl.Amount))
	if !c.presenter.Confirm(prompt) {
		return ErrCancelled
	}

	now := c.now()
	tx := core.Transaction{
		ID:          core.NewID("txn"),
		Description: tmpl.Description,
		Amount:      tmpl.Amount,
		Category:    tmpl.Category,
		Date:        core.FormatDate(now),
		Timestamp:   now.UnixMilli(),
	}
	if err := tx.Validate(); err != nil {
		c.presenter.ShowToast(err.Error(), ui.SeverityError)
		return err
	}
	c.store.AddTransaction(tx)

	c.persist(ctx)
	c.renderAffected(core.SectionFinance)
	c.presenter.ShowToast("Transaction added from template.", ui.SeveritySuccess)
	return nil
}

// --- Goals ---

func (c *Controller) AddGoal(ctx context.Context, description string, target float64) error {
	goal := core.SavingsGoal{
		ID:          core.NewID("goal"),
		Description: strings.TrimSpace(description),
		Target:      target,
		CreatedAt:   core.FormatDate(c.now()),
	}
	if err := goal.Validate(); err != nil {
		c.presenter.ShowToast(err.Error(), ui.SeverityError)
		return err
	}
	c.store.AddGoal(goal)

	c.persist(ctx)
	c.renderAffected(core.SectionGoals)
	c.presenter.ShowToast("Goal added.", ui.SeveritySuccess)
	return nil
}

func (c *Controller) DeleteGoal(ctx context.Context, id string) error {
	if !c.presenter.Confirm("Delete this goal?") {
		return ErrCancelled
	}
	if err := c.store.DeleteGoal(id); err != nil {
		c.presenter.ShowToast("Goal not found.", ui.SeverityError)
		return err
	}

	c.persist(ctx)
	c.renderAffected(core.SectionGoals)
	c.presenter.ShowToast("Goal deleted.", ui.SeveritySuccess)
	return nil
}

// --- Notes ---

func (c *Controller) AddNote(ctx context.Context, text string) error {
	note := core.Note{
		ID:        core.NewID("note"),
		Text:      strings.TrimSpace(text),
		Timestamp: c.now().UnixMilli(),
	}
	if err := note.Validate(); err != nil {
		c.presenter.ShowToast(err.Error(), ui.SeverityError)
		return err
	}
	c.store.AddNote(note)

	c.persist(ctx)
	c.renderAffected(core.SectionNotes)
	c.presenter.ShowToast("Note added.", ui.SeveritySuccess)
	return nil
}

func (c *Controller) DeleteNote(ctx context.Context, id string) error {
	if !c.presenter.Confirm("Delete this note?") {
		return ErrCancelled
	}
	if err := c.store.DeleteNote(id); err != nil {
		c.presenter.ShowToast("Note not found.", ui.SeverityError)
		return err
	}

	c.persist(ctx)
	c.renderAffected(core.SectionNotes)
	c.presenter.ShowToast("Note deleted.", ui.SeveritySuccess)
	return nil
}

// --- Categories ---

func (c *Controller) AddCategory(ctx context.Context, name string) error {
	if !c.store.AddCategory(name) {
		c.presenter.ShowToast("Category already exists.", ui.SeverityError)
		return fmt.Errorf("category %q already exists", strings.TrimSpace(name))
	}

	c.persist(ctx)
	c.renderAffected(core.SectionSettings)
	c.presenter.ShowToast("Category added.", ui.SeveritySuccess)
	return nil
}

// DeleteCategory removes a category and its budget limit. Historical
// transactions keep the label they were recorded with.
func (c *Controller) DeleteCategory(ctx context.Context, name string) error {
	if !c.presenter.Confirm(fmt.Sprintf("Remove category %q? Its budget limit is removed too.", name)) {
		return ErrCancelled
	}
	if !c.store.DeleteCategory(name) {
		c.presenter.ShowToast("Category not found.", ui.SeverityError)
		return fmt.Errorf("category %s: %w", name, store.ErrNotFound)
	}

	c.persist(ctx)
	c.renderAffected(core.SectionSettings)
	c.presenter.ShowToast("Category removed.", ui.SeveritySuccess)
	return nil
}

// --- Budgets ---

// SetOverallBudget sets the overall monthly cap; a nil amount removes it.
func (c *Controller) SetOverallBudget(ctx context.Context, amount *float64) {
	c.store.SetOverallBudget(amount)
	c.persist(ctx)
	c.renderAffected(core.SectionBudgets)
	c.presenter.ShowToast("Budget updated.", ui.SeveritySuccess)
}

// SetCategoryBudget sets a per-category limit; a nil amount removes it.
func (c *Controller) SetCategoryBudget(ctx context.Context, category string, amount *float64) {
	c.store.SetCategoryBudget(category, amount)
	c.persist(ctx)
	c.renderAffected(core.SectionBudgets)
	c.presenter.ShowToast("Budget updated.", ui.SeveritySuccess)
}

// --- Settings ---

func (c *Controller) SetCurrency(ctx context.Context, code string) error {
	currency, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		c.presenter.ShowToast("Unsupported currency code.", ui.SeverityError)
		return fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	c.store.SetCurrency(currency)

	c.persist(ctx)
	c.renderAffected(core.SectionSettings)
	c.presenter.ShowToast(fmt.Sprintf("Currency set to %s.", currency.Code), ui.SeveritySuccess)
	return nil
}

// ToggleTheme flips between light and dark and applies the result.
func (c *Controller) ToggleTheme(ctx context.Context) {
	theme := core.ThemeLight
	if c.store.Snapshot().Settings.Theme == core.ThemeLight {
		theme = core.ThemeDark
	}
	c.store.SetTheme(theme)
	c.persist(ctx)
	c.presenter.ApplyTheme(theme)
}

// --- Navigation and transient view state ---

func (c *Controller) Navigate(ctx context.Context, section string) {
	c.store.SetActiveSection(section)
	c.persist(ctx)
	snap := c.store.Snapshot()
	c.renderSection(snap, snap.UIPreferences.ActiveSection)
}

func (c *Controller) ToggleSidebar(ctx context.Context) {
	collapsed := !c.store.Snapshot().UIPreferences.IsSidebarCollapsed
	c.store.SetSidebarCollapsed(collapsed)
	c.persist(ctx)
}

// SetFilters updates the transaction list filters. Transient, never saved.
func (c *Controller) SetFilters(f core.Filters) {
	c.store.SetFilters(f)
	c.renderAffected(core.SectionFinance)
}

func (c *Controller) SetSort(spec core.SortSpec) {
	c.store.SetSort(spec)
	c.renderAffected(core.SectionFinance)
}

// ResetFilters restores the default filter set, leaving the sort alone.
func (c *Controller) ResetFilters() {
	c.store.SetFilters(core.DefaultTransient().Filters)
	c.renderAffected(core.SectionFinance)
}

func (c *Controller) SetNotesSearch(term string) {
	c.store.SetNotesSearch(term)
	c.renderAffected(core.SectionNotes)
}

// --- Backup, restore, clear ---

// ExportBackup serializes the document and hands it to the presenter as a
// downloadable file.
func (c *Controller) ExportBackup(ctx context.Context) error {
	archive, err := backup.Export(c.store.Snapshot(), c.now())
	if err != nil {
		c.presenter.ShowToast("Export failed.", ui.SeverityError)
		return err
	}
	if err := c.presenter.SaveFile(archive.Filename, archive.ContentType, archive.Data); err != nil {
		c.presenter.ShowToast("Export failed.", ui.SeverityError)
		return fmt.Errorf("save backup: %w", err)
	}
	c.log.Info("backup exported", log.FieldFilename, archive.Filename, log.FieldBytes, len(archive.Data))
	c.presenter.ShowToast("Backup exported.", ui.SeveritySuccess)
	return nil
}

// ImportBackup validates an uploaded archive, confirms the overwrite, and
// only then replaces the document. Nothing is mutated before the candidate
// parses and the user confirms.
func (c *Controller) ImportBackup(ctx context.Context, contentType string, data []byte) error {
	candidate, err := backup.Parse(contentType, data)
	if err != nil {
		c.presenter.ShowToast("Backup file is not valid.", ui.SeverityError)
		return err
	}
	if !c.presenter.Confirm("Importing replaces ALL current data. Continue?") {
		return ErrCancelled
	}
	if err := c.store.Restore(ctx, candidate); err != nil {
		c.presenter.ShowToast("Failed to save imported data.", ui.SeverityError)
		return err
	}

	snap := c.store.Snapshot()
	c.presenter.ApplyTheme(snap.Settings.Theme)
	c.renderSection(snap, snap.UIPreferences.ActiveSection)
	c.presenter.ShowToast("Backup imported.", ui.SeveritySuccess)
	return nil
}

// ClearAll erases everything except the theme choice, after confirmation.
func (c *Controller) ClearAll(ctx context.Context) error {
	if !c.presenter.Confirm("Erase ALL data? This cannot be undone.") {
		return ErrCancelled
	}
	if err := c.store.ClearAll(ctx); err != nil {
		c.presenter.ShowToast("Failed to clear data.", ui.SeverityError)
		return err
	}

	snap := c.store.Snapshot()
	c.renderSection(snap, snap.UIPreferences.ActiveSection)
	c.presenter.ShowToast("All data cleared.", ui.SeveritySuccess)
	return nil
}

// persist saves the document; a failure is reported but the in-memory state
// stays authoritative.
func (c *Controller) persist(ctx context.Context) {
	if err := c.store.Save(ctx); err != nil {
		c.log.Error("save failed", log.FieldError, err)
		c.presenter.ShowToast("Failed to save your data.", ui.SeverityError)
	}
}

// renderAffected re-renders a section from a fresh snapshot, plus the
// dashboard when the data feeding it may have changed.
func (c *Controller) renderAffected(section string) {
	snap := c.store.Snapshot()
	c.renderSection(snap, section)
	switch section {
	case core.SectionFinance, core.SectionGoals, core.SectionBudgets:
		c.renderDashboard(snap)
	}
}

func (c *Controller) renderSection(snap core.Document, section string) {
	switch section {
	case core.SectionFinance:
		c.renderFinance(snap)
	case core.SectionGoals:
		c.renderGoals(snap)
	case core.SectionBudgets:
		c.renderBudgets(snap)
	case core.SectionNotes:
		c.renderNotes(snap)
	case core.SectionSettings:
		c.renderSettings(snap)
	default:
		c.renderDashboard(snap)
	}
}

func (c *Controller) renderDashboard(snap core.Document) {
	currency := snap.Settings.Currency
	summary := core.Summarize(snap.Transactions)

	lines := []string{
		fmt.Sprintf("Income  %s", formatAmount(currency, summary.TotalIncome)),
		fmt.Sprintf("Expense %s", formatAmount(currency, summary.TotalExpense)),
		fmt.Sprintf("Balance %s", formatAmount(currency, summary.CurrentBalance)),
	}

	recent := core.FilterAndSort(snap.Transactions, core.Filters{Type: core.FilterAll},
		core.SortSpec{Key: core.SortByDate, Direction: core.SortDesc})
	if len(recent) > recentTransactionLimit {
		recent = recent[:recentTransactionLimit]
	}
	if len(recent) > 0 {
		lines = append(lines, "", "Recent:")
		for _, t := range recent {
			lines = append(lines, transactionLine(currency, t))
		}
	}

	if len(snap.Goals) > 0 {
		lines = append(lines, "", "Goals:")
		for _, g := range snap.Goals {
			status := core.GoalStatus(g, summary.CurrentBalance)
			lines = append(lines, fmt.Sprintf("%s: %.0f%% of %s",
				g.Description, status.Progress, formatAmount(currency, g.Target)))
		}
	}

	if budgets := budgetLines(snap, currency, core.MonthlyExpenses(snap.Transactions, c.now())); len(budgets) > 0 {
		lines = append(lines, "", "Budgets:")
		lines = append(lines, budgets...)
	}
	c.presenter.RenderView(ui.ViewDashboard, lines)

	trend := core.LastMonthsSpending(snap.Transactions, c.trendMonths, c.now())
	c.presenter.DrawChart("Spending trend", trend.Labels, trend.Data)
}

func (c *Controller) renderFinance(snap core.Document) {
	currency := snap.Settings.Currency
	filtered := core.FilterAndSort(snap.Transactions, snap.UITransient.Filters, snap.UITransient.Sort)
	summary := core.Summarize(filtered)

	lines := []string{
		fmt.Sprintf("Income %s | Expense %s | Balance %s",
			formatAmount(currency, summary.TotalIncome),
			formatAmount(currency, summary.TotalExpense),
			formatAmount(currency, summary.CurrentBalance)),
		"",
	}
	for _, t := range filtered {
		lines = append(lines, transactionLine(currency, t))
	}
	c.presenter.RenderView(ui.ViewTransactions, lines)

	byCategory := core.ExpenseByCategory(filtered)
	keys := make([]string, 0, len(byCategory))
	for k := range byCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	labels := make([]string, 0, len(keys))
	values := make([]float64, 0, len(keys))
	for _, k := range keys {
		labels = append(labels, byCategory[k].Label)
		values = append(values, byCategory[k].Amount)
	}
	c.presenter.DrawChart("Expenses by category", labels, values)
}

func (c *Controller) renderGoals(snap core.Document) {
	currency := snap.Settings.Currency
	balance := core.Summarize(snap.Transactions).CurrentBalance

	lines := make([]string, 0, len(snap.Goals))
	for _, g := range snap.Goals {
		status := core.GoalStatus(g, balance)
		lines = append(lines, fmt.Sprintf("%s: %s target, %.0f%% there, %s to go [%s]",
			g.Description,
			formatAmount(currency, g.Target),
			status.Progress,
			formatAmount(currency, status.Remaining),
			g.ID))
	}
	c.presenter.RenderView(ui.ViewGoals, lines)
}

func (c *Controller) renderBudgets(snap core.Document) {
	monthly := core.MonthlyExpenses(snap.Transactions, c.now())
	c.presenter.RenderView(ui.ViewBudgets, budgetLines(snap, snap.Settings.Currency, monthly))
}

// budgetLines evaluates every configured limit against the current month,
// overall cap first, category limits sorted by name.
func budgetLines(snap core.Document, currency core.Currency, monthly core.MonthlyBreakdown) []string {
	var lines []string
	if snap.Budgets.Overall != nil {
		report := core.BudgetStatus(snap.Budgets.Overall.Amount, monthly.Total)
		lines = append(lines, budgetLine(currency, "Overall", report))
	}

	names := make([]string, 0, len(snap.Budgets.Categories))
	for name := range snap.Budgets.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		spent := monthly.ByCategory[strings.ToLower(name)]
		report := core.BudgetStatus(snap.Budgets.Categories[name].Amount, spent)
		lines = append(lines, budgetLine(currency, name, report))
	}
	return lines
}

func (c *Controller) renderNotes(snap core.Document) {
	notes := make([]core.Note, len(snap.Notes))
	copy(notes, snap.Notes)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Timestamp > notes[j].Timestamp
	})

	term := strings.ToLower(strings.TrimSpace(snap.UITransient.NotesSearchTerm))
	var lines []string
	for _, n := range notes {
		if term != "" && !strings.Contains(strings.ToLower(n.Text), term) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s [%s]", n.Text, n.ID))
	}
	c.presenter.RenderView(ui.ViewNotes, lines)
}

func (c *Controller) renderSettings(snap core.Document) {
	lines := []string{
		fmt.Sprintf("Theme:    %s", snap.Settings.Theme),
		fmt.Sprintf("Currency: %s (%s)", snap.Settings.Currency.Code, snap.Settings.Currency.Symbol),
		fmt.Sprintf("Categories: %s", strings.Join(snap.Settings.Categories, ", ")),
	}
	if len(snap.Settings.RecurringTemplates) > 0 {
		lines = append(lines, "", "Recurring templates:")
		for _, t := range snap.Settings.RecurringTemplates {
			lines = append(lines, fmt.Sprintf("%s %s [%s]",
				t.Description, formatAmount(snap.Settings.Currency, t.Amount), t.ID))
		}
	}
	c.presenter.RenderView(ui.ViewSettings, lines)
}

func transactionLine(currency core.Currency, t core.Transaction) string {
	category := t.Category
	if category == "" {
		if t.IsExpense() {
			category = core.UncategorizedLabel
		} else {
			category = "Income"
		}
	}
	return fmt.Sprintf("%s  %-12s %s  %s [%s]",
		t.Date, category, formatAmount(currency, t.Amount), t.Description, t.ID)
}

func budgetLine(currency core.Currency, label string, r core.BudgetReport) string {
	state := fmt.Sprintf("%.0f%% used", r.Percentage)
	if r.IsOver {
		state = fmt.Sprintf("OVER by %s", formatAmount(currency, -r.Remaining))
	}
	return fmt.Sprintf("%s: %s of %s (%s)",
		label, formatAmount(currency, r.Spent), formatAmount(currency, r.Limit), state)
}

// formatAmount renders a signed amount with the active currency symbol.
func formatAmount(c core.Currency, v float64) string {
	if v < 0 {
		return fmt.Sprintf("-%s%.2f", c.Symbol, math.Abs(v))
	}
	return fmt.Sprintf("%s%.2f", c.Symbol, v)
}
