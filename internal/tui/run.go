package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/carcli/internal/cli"
)

// Run starts the TUI on the terminal and blocks until the user quits
func Run(app *cli.App) error {
	m := New(app)
	defer m.Cleanup()

	// pass a pointer since Update uses a pointer receiver
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
