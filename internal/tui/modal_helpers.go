package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// modalConfig defines a centered bordered dialog
type modalConfig struct {
	Title  string
	Body   string
	Footer string

	// Width of the box; clamped to the terminal
	Width int

	// BorderColor defaults to cyan
	BorderColor lipgloss.TerminalColor
}

// renderModal renders cfg centered in a totalWidth x totalHeight area
func renderModal(cfg modalConfig, totalWidth, totalHeight int) string {
	width := cfg.Width
	if width <= 0 || width > ModalMaxWidth {
		width = ModalMaxWidth
	}
	if totalWidth > 0 && width > totalWidth-ModalWidthMargin {
		width = max(20, totalWidth-ModalWidthMargin)
	}

	var border lipgloss.TerminalColor = colorCyan
	if cfg.BorderColor != nil {
		border = cfg.BorderColor
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Padding(1, 2).
		Render(styleTitle.Render(cfg.Title) + "\n\n" + cfg.Body)

	content := box
	if cfg.Footer != "" {
		content = lipgloss.JoinVertical(
			lipgloss.Left,
			box,
			styleSubtle.Width(width).Render(cfg.Footer),
		)
	}

	return lipgloss.Place(
		totalWidth,
		totalHeight,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}
