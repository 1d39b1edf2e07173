package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"fintrack/internal/backup"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/storage/memory"
	"fintrack/internal/ui"
)

// fakePresenter records everything the controller pushes at it and answers
// confirmations from a scripted queue (default: decline).
type fakePresenter struct {
	answers []bool
	toasts  []string
	views   map[string][]string
	themes  []string
	saved   map[string][]byte
}

func newFakePresenter(answers ...bool) *fakePresenter {
	return &fakePresenter{
		answers: answers,
		views:   map[string][]string{},
		saved:   map[string][]byte{},
	}
}

func (p *fakePresenter) RenderView(view string, lines []string) { p.views[view] = lines }
func (p *fakePresenter) ShowToast(message string, severity ui.Severity) {
	p.toasts = append(p.toasts, string(severity)+": "+message)
}
func (p *fakePresenter) Confirm(message string) bool {
	if len(p.answers) == 0 {
		return false
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer
}
func (p *fakePresenter) ApplyTheme(name string) { p.themes = append(p.themes, name) }
func (p *fakePresenter) DrawChart(title string, labels []string, values []float64) {}
func (p *fakePresenter) SaveFile(name, contentType string, data []byte) error {
	p.saved[name] = data
	return nil
}

func (p *fakePresenter) lastToast(t *testing.T) string {
	t.Helper()
	if len(p.toasts) == 0 {
		t.Fatal("no toast shown")
	}
	return p.toasts[len(p.toasts)-1]
}

func newTestController(t *testing.T, presenter ui.Presenter) (*Controller, *store.Store) {
	t.Helper()
	documents := store.New(memory.New())
	logger := log.New(log.Config{
		Component: log.ComponentController,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	clock := func() time.Time {
		return time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)
	}
	return New(documents, presenter, logger, WithClock(clock)), documents
}

func TestAddTransaction(t *testing.T) {
	presenter := newFakePresenter()
	controller, documents := newTestController(t, presenter)

	err := controller.AddTransaction(context.Background(), TransactionInput{
		Description: "Team lunch",
		Amount:      42.50,
		Type:        core.FilterExpense,
		Category:    "Dining Out",
		Date:        "2024-01-15",
	})
	if err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}

	snap := documents.Snapshot()
	if len(snap.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(snap.Transactions))
	}
	tx := snap.Transactions[0]
	if tx.Amount != -42.50 {
		t.Errorf("expense amount = %v, want -42.50", tx.Amount)
	}
	if tx.Timestamp != time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC).UnixMilli() {
		t.Errorf("timestamp = %d", tx.Timestamp)
	}

	// A new category on an expense registers globally.
	found := false
	for _, c := range snap.Settings.Categories {
		if c == "Dining Out" {
			found = true
		}
	}
	if !found {
		t.Errorf("new category not registered: %v", snap.Settings.Categories)
	}
}

func TestAddTransactionValidationLeavesStateAlone(t *testing.T) {
	presenter := newFakePresenter()
	controller, documents := newTestController(t, presenter)

	tests := []struct {
		name string
		in   TransactionInput
	}{
		{"empty description", TransactionInput{Amount: 10, Type: core.FilterIncome, Date: "2024-01-15"}},
		{"zero amount", TransactionInput{Description: "x", Amount: 0, Type: core.FilterIncome, Date: "2024-01-15"}},
		{"bad date", TransactionInput{Description: "x", Amount: 10, Type: core.FilterIncome, Date: "soon"}},
		{"expense without category", TransactionInput{Description: "x", Amount: 10, Type: core.FilterExpense, Date: "2024-01-15"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toastsBefore := len(presenter.toasts)
			if err := controller.AddTransaction(context.Background(), tt.in); err == nil {
				t.Fatal("want validation error")
			}
			if len(documents.Snapshot().Transactions) != 0 {
				t.Error("invalid input mutated the document")
			}
			if len(presenter.toasts) != toastsBefore+1 {
				t.Error("validation failure should toast exactly once")
			}
		})
	}
}

func TestAddRecurringTransactionSavesTemplate(t *testing.T) {
	presenter := newFakePresenter()
	controller, documents := newTestController(t, presenter)

	err := controller.AddTransaction(context.Background(), TransactionInput{
		Description: "Rent",
		Amount:      500,
		Type:        core.FilterExpense,
		Category:    "Utilities",
		Date:        "2024-01-01",
		Recurring:   true,
	})
	if err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}

	snap := documents.Snapshot()
	if len(snap.Settings.RecurringTemplates) != 1 {
		t.Fatalf("templates = %d, want 1", len(snap.Settings.RecurringTemplates))
	}
	tmpl := snap.Settings.RecurringTemplates[0]
	if tmpl.ID != snap.Transactions[0].ID {
		t.Errorf("template id %q should back-reference transaction %q", tmpl.ID, snap.Transactions[0].ID)
	}
}

func TestDeleteTransactionRemovesTemplate(t *testing.T) {
	presenter := newFakePresenter(true)
	controller, documents := newTestController(t, presenter)

	if err := controller.AddTransaction(context.Background(), TransactionInput{
		Description: "Rent", Amount: 500, Type: core.FilterExpense,
		Category: "Utilities", Date: "2024-01-01", Recurring: true,
	}); err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}
	id := documents.Snapshot().Transactions[0].ID

	if err := controller.DeleteTransaction(context.Background(), id); err != nil {
		t.Fatalf("DeleteTransaction() = %v", err)
	}

	snap := documents.Snapshot()
	if len(snap.Transactions) != 0 {
		t.Error("transaction not deleted")
	}
	if len(snap.Settings.RecurringTemplates) != 0 {
		t.Error("back-referencing template should be removed with its transaction")
	}
}

func TestDeclinedConfirmationsMutateNothing(t *testing.T) {
	presenter := newFakePresenter() // every Confirm answers false
	controller, documents := newTestController(t, presenter)

	if err := controller.AddTransaction(context.Background(), TransactionInput{
		Description: "Rent", Amount: 500, Type: core.FilterExpense,
		Category: "Utilities", Date: "2024-01-01",
	}); err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}
	if err := controller.AddNote(context.Background(), "keep me"); err != nil {
		t.Fatalf("AddNote() = %v", err)
	}
	before := documents.Snapshot()
	txID := before.Transactions[0].ID
	noteID := before.Notes[0].ID

	actions := []struct {
		name string
		run  func() error
	}{
		{"delete transaction", func() error { return controller.DeleteTransaction(context.Background(), txID) }},
		{"delete note", func() error { return controller.DeleteNote(context.Background(), noteID) }},
		{"delete category", func() error { return controller.DeleteCategory(context.Background(), "Utilities") }},
		{"clear all", func() error { return controller.ClearAll(context.Background()) }},
	}

	for _, action := range actions {
		t.Run(action.name, func(t *testing.T) {
			if err := action.run(); !errors.Is(err, ErrCancelled) {
				t.Fatalf("err = %v, want ErrCancelled", err)
			}
			after := documents.Snapshot()
			if len(after.Transactions) != 1 || len(after.Notes) != 1 {
				t.Error("declined confirmation mutated the document")
			}
		})
	}
}

func TestAddFromTemplate(t *testing.T) {
	presenter := newFakePresenter(true)
	controller, documents := newTestController(t, presenter)

	documents.AddRecurringTemplate(core.RecurringTemplate{
		ID: "txn_origin", Description: "Gym", Amount: -30, Category: "Health",
	})

	if err := controller.AddFromTemplate(context.Background(), "txn_origin"); err != nil {
		t.Fatalf("AddFromTemplate() = %v", err)
	}

	snap := documents.Snapshot()
	if len(snap.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(snap.Transactions))
	}
	tx := snap.Transactions[0]
	if tx.ID == "txn_origin" {
		t.Error("instantiated transaction must get a fresh id")
	}
	if tx.Date != "2024-01-20" {
		t.Errorf("date = %q, want today per the clock", tx.Date)
	}
	if tx.Amount != -30 || tx.Category != "Health" {
		t.Errorf("template fields not carried over: %+v", tx)
	}

	err := controller.AddFromTemplate(context.Background(), "txn_missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unknown template: err = %v, want ErrNotFound", err)
	}
}

func TestAddCategoryDuplicate(t *testing.T) {
	presenter := newFakePresenter()
	controller, _ := newTestController(t, presenter)

	if err := controller.AddCategory(context.Background(), "Subscriptions"); err != nil {
		t.Fatalf("AddCategory() = %v", err)
	}
	if err := controller.AddCategory(context.Background(), "SUBSCRIPTIONS"); err == nil {
		t.Error("case-folded duplicate should be rejected")
	}
}

func TestSetCurrency(t *testing.T) {
	presenter := newFakePresenter()
	controller, documents := newTestController(t, presenter)

	if err := controller.SetCurrency(context.Background(), "usd"); err != nil {
		t.Fatalf("SetCurrency() = %v", err)
	}
	if got := documents.Snapshot().Settings.Currency; got != (core.Currency{Symbol: "$", Code: "USD"}) {
		t.Errorf("currency = %+v", got)
	}

	if err := controller.SetCurrency(context.Background(), "BTC"); !errors.Is(err, ErrUnknownCurrency) {
		t.Errorf("err = %v, want ErrUnknownCurrency", err)
	}
}

func TestToggleTheme(t *testing.T) {
	presenter := newFakePresenter()
	controller, documents := newTestController(t, presenter)

	controller.ToggleTheme(context.Background())
	if got := documents.Snapshot().Settings.Theme; got != core.ThemeDark {
		t.Errorf("theme = %q, want dark", got)
	}
	controller.ToggleTheme(context.Background())
	if got := documents.Snapshot().Settings.Theme; got != core.ThemeLight {
		t.Errorf("theme = %q, want light again", got)
	}
	if len(presenter.themes) != 2 {
		t.Errorf("ApplyTheme called %d times, want 2", len(presenter.themes))
	}
}

func TestExportImportBackupFlow(t *testing.T) {
	presenter := newFakePresenter(true)
	controller, documents := newTestController(t, presenter)

	if err := controller.AddTransaction(context.Background(), TransactionInput{
		Description: "Salary", Amount: 1500, Type: core.FilterIncome, Date: "2024-01-05",
	}); err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}

	if err := controller.ExportBackup(context.Background()); err != nil {
		t.Fatalf("ExportBackup() = %v", err)
	}
	data, ok := presenter.saved["fintrack-backup-2024-01-20.json"]
	if !ok {
		t.Fatalf("no archive saved: %v", presenter.saved)
	}

	// Wipe, then import the archive back.
	presenter.answers = []bool{true, true}
	if err := controller.ClearAll(context.Background()); err != nil {
		t.Fatalf("ClearAll() = %v", err)
	}
	if err := controller.ImportBackup(context.Background(), backup.ContentType, data); err != nil {
		t.Fatalf("ImportBackup() = %v", err)
	}

	snap := documents.Snapshot()
	if len(snap.Transactions) != 1 || snap.Transactions[0].Description != "Salary" {
		t.Errorf("imported transactions = %+v", snap.Transactions)
	}
}

func TestImportBackupRejectsBadPayloadBeforeConfirm(t *testing.T) {
	presenter := newFakePresenter(true)
	controller, documents := newTestController(t, presenter)

	if err := controller.AddNote(context.Background(), "survivor"); err != nil {
		t.Fatalf("AddNote() = %v", err)
	}

	err := controller.ImportBackup(context.Background(), backup.ContentType, []byte(`broken`))
	if err == nil {
		t.Fatal("want parse error")
	}
	if len(presenter.answers) != 1 {
		t.Error("confirmation should not be consumed for an invalid payload")
	}
	if len(documents.Snapshot().Notes) != 1 {
		t.Error("invalid import mutated the document")
	}
}

func TestNavigateRendersSection(t *testing.T) {
	presenter := newFakePresenter()
	controller, documents := newTestController(t, presenter)

	controller.Navigate(context.Background(), core.SectionNotes)
	if got := documents.Snapshot().UIPreferences.ActiveSection; got != core.SectionNotes {
		t.Errorf("active section = %q, want notes", got)
	}
	if _, ok := presenter.views[ui.ViewNotes]; !ok {
		t.Error("notes view not rendered")
	}
}

func TestDashboardShowsGoalAndBudgetTiles(t *testing.T) {
	presenter := newFakePresenter()
	controller, documents := newTestController(t, presenter)
	ctx := context.Background()

	if err := controller.AddTransaction(ctx, TransactionInput{
		Description: "Salary", Amount: 1000, Type: core.FilterIncome, Date: "2024-01-05",
	}); err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}
	if err := controller.AddTransaction(ctx, TransactionInput{
		Description: "Lunch", Amount: 200, Type: core.FilterExpense, Category: "Food", Date: "2024-01-06",
	}); err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}
	if err := controller.AddGoal(ctx, "Vacation", 1600); err != nil {
		t.Fatalf("AddGoal() = %v", err)
	}
	limit := 500.0
	controller.SetCategoryBudget(ctx, "Food", &limit)

	if _, ok := presenter.views[ui.ViewDashboard]; !ok {
		t.Fatal("dashboard not rendered")
	}
	dashboard := strings.Join(presenter.views[ui.ViewDashboard], "\n")

	// Balance 800 against a 1600 target is 50% progress.
	if !strings.Contains(dashboard, "Vacation: 50% of ₹1600.00") {
		t.Errorf("dashboard missing goal progress:\n%s", dashboard)
	}
	// 200 of the 500 Food limit is spent this month.
	if !strings.Contains(dashboard, "Food: ₹200.00 of ₹500.00 (40% used)") {
		t.Errorf("dashboard missing budget summary:\n%s", dashboard)
	}

	snap := documents.Snapshot()
	if len(snap.Goals) != 1 || len(snap.Budgets.Categories) != 1 {
		t.Fatalf("fixture state unexpected: %+v", snap.Budgets)
	}
}

func TestFinanceSummaryUsesFilteredList(t *testing.T) {
	presenter := newFakePresenter()
	controller, _ := newTestController(t, presenter)
	ctx := context.Background()

	if err := controller.AddTransaction(ctx, TransactionInput{
		Description: "Salary", Amount: 1500, Type: core.FilterIncome, Date: "2024-01-05",
	}); err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}
	if err := controller.AddTransaction(ctx, TransactionInput{
		Description: "Lunch", Amount: 20, Type: core.FilterExpense, Category: "Food", Date: "2024-01-06",
	}); err != nil {
		t.Fatalf("AddTransaction() = %v", err)
	}

	controller.SetFilters(core.Filters{Type: core.FilterExpense})

	lines := presenter.views[ui.ViewTransactions]
	if len(lines) == 0 {
		t.Fatal("transactions view not rendered")
	}
	// With only the expense visible, the filtered balance is -20.
	if want := "Income ₹0.00 | Expense ₹20.00 | Balance -₹20.00"; lines[0] != want {
		t.Errorf("summary line = %q, want %q", lines[0], want)
	}
}
