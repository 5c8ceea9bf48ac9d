package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
// It auto-detects the terminal background style.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// IsTerminal reports whether stdout is attached to a TTY. Callers fall back
// to raw markdown output when it is not.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
