package backup

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestExportImportRoundTrip(t *testing.T) {
	doc := core.DefaultDocument()
	doc.Transactions = []core.Transaction{
		{ID: "txn_1", Description: "Salary", Amount: 1500, Date: "2024-01-05", Timestamp: 1},
		{ID: "txn_2", Description: "Lunch", Amount: -12.5, Category: "Food", Date: "2024-01-06", Timestamp: 2},
	}
	doc.Goals = []core.SavingsGoal{{ID: "goal_1", Description: "Vacation", Target: 1000, CreatedAt: "2024-01-01"}}
	doc.Notes = []core.Note{{ID: "note_1", Text: "remember", Timestamp: 3}}
	limit := 200.0
	doc.Budgets.Overall = &core.BudgetEntry{Amount: limit}
	doc.Budgets.Categories["Food"] = core.BudgetEntry{Amount: 50}
	doc.Settings.Theme = core.ThemeDark
	doc.Settings.RecurringTemplates = []core.RecurringTemplate{{ID: "txn_2", Description: "Lunch", Amount: -12.5, Category: "Food"}}

	archive, err := Export(doc, time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export() = %v", err)
	}
	if archive.Filename != "fintrack-backup-2024-03-09.json" {
		t.Errorf("filename = %q", archive.Filename)
	}
	if archive.ContentType != ContentType {
		t.Errorf("content type = %q", archive.ContentType)
	}

	restored, err := Parse(archive.ContentType, archive.Data)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}

	if !reflect.DeepEqual(restored.Transactions, doc.Transactions) {
		t.Errorf("transactions round trip: %+v", restored.Transactions)
	}
	if !reflect.DeepEqual(restored.Goals, doc.Goals) {
		t.Errorf("goals round trip: %+v", restored.Goals)
	}
	if !reflect.DeepEqual(restored.Notes, doc.Notes) {
		t.Errorf("notes round trip: %+v", restored.Notes)
	}
	if restored.Budgets.Overall == nil || restored.Budgets.Overall.Amount != limit {
		t.Errorf("overall budget round trip: %+v", restored.Budgets.Overall)
	}
	if restored.Settings.Theme != core.ThemeDark {
		t.Errorf("theme round trip: %q", restored.Settings.Theme)
	}
	if !reflect.DeepEqual(restored.Settings.RecurringTemplates, doc.Settings.RecurringTemplates) {
		t.Errorf("templates round trip: %+v", restored.Settings.RecurringTemplates)
	}
}

func TestParseRejectsWrongContentType(t *testing.T) {
	_, err := Parse("text/plain", []byte(`{"transactions":[],"settings":{}}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("err = %v, want ErrUnsupportedType", err)
	}
}

func TestParseRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `hello`},
		{"array", `[1,2,3]`},
		{"missing transactions", `{"settings":{"theme":"dark"}}`},
		{"missing settings", `{"transactions":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(ContentType, []byte(tt.data))
			if !errors.Is(err, ErrInvalidBackup) {
				t.Errorf("err = %v, want ErrInvalidBackup", err)
			}
		})
	}
}
