// Package term implements the ui.Presenter port on a line-oriented terminal.
package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ui"
)

const barWidth = 40

// Presenter renders views as plain text and reads confirmations from an
// input stream. The reader is shared with the command loop so a confirm
// prompt never steals buffered input; single-goroutine use only.
type Presenter struct {
	out       io.Writer
	in        *bufio.Reader
	backupDir string
	theme     string
}

// New creates a Presenter writing to out, reading confirmations from in,
// and saving files under backupDir.
func New(out io.Writer, in *bufio.Reader, backupDir string) *Presenter {
	return &Presenter{
		out:       out,
		in:        in,
		backupDir: backupDir,
		theme:     core.ThemeLight,
	}
}

// RenderView prints the view under a header line.
func (p *Presenter) RenderView(view string, lines []string) {
	fmt.Fprintf(p.out, "\n== %s ==\n", strings.ToUpper(view))
	if len(lines) == 0 {
		fmt.Fprintln(p.out, "  (nothing to show)")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(p.out, "  %s\n", line)
	}
}

// ShowToast prints a one-line notification prefixed by its severity.
func (p *Presenter) ShowToast(message string, severity ui.Severity) {
	fmt.Fprintf(p.out, "[%s] %s\n", severity, message)
}

// Confirm prompts with a y/n question and returns true on "y" or "yes".
// EOF or a read failure counts as a decline.
func (p *Presenter) Confirm(message string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", message)
	answer, err := p.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ApplyTheme records the active theme and announces the switch.
func (p *Presenter) ApplyTheme(name string) {
	p.theme = name
	fmt.Fprintf(p.out, "theme set to %s\n", name)
}

// DrawChart renders a horizontal ASCII bar chart scaled to the largest value.
func (p *Presenter) DrawChart(title string, labels []string, values []float64) {
	fmt.Fprintf(p.out, "\n-- %s --\n", title)
	if len(labels) == 0 {
		fmt.Fprintln(p.out, "  (no data)")
		return
	}

	var max float64
	labelWidth := 0
	for i, label := range labels {
		if i < len(values) && values[i] > max {
			max = values[i]
		}
		if len(label) > labelWidth {
			labelWidth = len(label)
		}
	}

	for i, label := range labels {
		var v float64
		if i < len(values) {
			v = values[i]
		}
		bar := 0
		if max > 0 {
			bar = int(v / max * barWidth)
		}
		fmt.Fprintf(p.out, "  %-*s %s %.2f\n", labelWidth, label, strings.Repeat("#", bar), v)
	}
}

// SaveFile writes the archive into the backup directory.
func (p *Presenter) SaveFile(name, contentType string, data []byte) error {
	if err := os.MkdirAll(p.backupDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}
	path := filepath.Join(p.backupDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}
	fmt.Fprintf(p.out, "saved %s (%s, %d bytes)\n", path, contentType, len(data))
	return nil
}

// DetectTheme guesses the terminal's preferred theme from COLORFGBG, which
// some terminals set to "<fg>;<bg>". Backgrounds 0-6 and 8 are dark.
func DetectTheme() string {
	value := os.Getenv("COLORFGBG")
	parts := strings.Split(value, ";")
	if len(parts) < 2 {
		return core.ThemeLight
	}
	switch parts[len(parts)-1] {
	case "0", "1", "2", "3", "4", "5", "6", "8":
		return core.ThemeDark
	default:
		return core.ThemeLight
	}
}
