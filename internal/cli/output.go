package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// palette styles human readable output. Every style is a no-op when the
// output is not a terminal.
type palette struct {
	heading lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
}

func newPalette(w io.Writer) palette {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return palette{heading: plain, ok: plain, fail: plain, muted: plain}
	}
	return palette{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#667eea")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
		fail:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
	}
}

// swatch renders a coloured block for a slice colour on terminals.
func (p palette) swatch(w io.Writer, hex string) string {
	if !isTerminal(w) || hex == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■") + " "
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func checkFormat(format string, allowed ...string) error {
	if slices.Contains(allowed, format) {
		return nil
	}
	return fmt.Errorf("unsupported format %q", format)
}
