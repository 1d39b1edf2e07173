// Package ui defines the presentation ports the controller renders through.
package ui

// Severity classifies a toast message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Presenter is the outbound port for everything the user sees. The
// controller recomputes each view from a fresh snapshot and pushes it here;
// implementations hold no document state of their own.
type Presenter interface {
	// RenderView replaces the contents of a named view with the given lines.
	RenderView(view string, lines []string)

	// ShowToast displays a transient notification.
	ShowToast(message string, severity Severity)

	// Confirm asks a yes/no question and blocks for the answer.
	Confirm(message string) bool

	// ApplyTheme switches the presentation to the named theme.
	ApplyTheme(name string)

	// DrawChart renders a labeled series, e.g. spending per category or
	// per month.
	DrawChart(title string, labels []string, values []float64)

	// SaveFile offers a generated file (such as a backup archive) to the
	// user for download.
	SaveFile(name, contentType string, data []byte) error
}

// View names known to the controller.
const (
	ViewDashboard    = "dashboard"
	ViewTransactions = "transactions"
	ViewGoals        = "goals"
	ViewBudgets      = "budgets"
	ViewNotes        = "notes"
	ViewSettings     = "settings"
)
