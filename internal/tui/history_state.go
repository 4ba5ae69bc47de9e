package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/studiowebux/carcli/internal/types"
)

// HistoryState encapsulates the request history modal state
type HistoryState struct {
	mu sync.RWMutex

	entries []types.HistoryEntry
	view    viewport.Model
}

// NewHistoryState creates a new history state
func NewHistoryState() *HistoryState {
	return &HistoryState{
		entries: []types.HistoryEntry{},
		view:    viewport.New(80, 20),
	}
}

// GetEntries returns a copy of the entries slice
func (s *HistoryState) GetEntries() []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]types.HistoryEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// SetEntries replaces the entries and re-renders the viewport content
func (s *HistoryState) SetEntries(entries []types.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	s.view.SetContent(formatHistory(entries))
	s.view.GotoTop()
}

// Resize adapts the viewport to the modal size
func (s *HistoryState) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width < 20 {
		width = 20
	}
	if height < 5 {
		height = 5
	}
	s.view.Width = width
	s.view.Height = height
}

// ScrollDown moves the viewport by n lines
func (s *HistoryState) ScrollDown(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ScrollDown(n)
}

// ScrollUp moves the viewport by n lines
func (s *HistoryState) ScrollUp(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ScrollUp(n)
}

// View renders the viewport
func (s *HistoryState) View() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.View()
}

func formatHistory(entries []types.HistoryEntry) string {
	if len(entries) == 0 {
		return styleSubtle.Render("No requests recorded yet")
	}

	var b strings.Builder
	for _, e := range entries {
		status := fmt.Sprintf("%d", e.Status)
		style := styleSuccess
		switch {
		case e.Status == 0:
			status = "ERR"
			style = styleError
		case e.Status >= 400:
			style = styleError
		case e.Status >= 300:
			style = styleWarning
		}

		line := fmt.Sprintf("%s  %-6s %s  %5dms  %s",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Method,
			style.Render(fmt.Sprintf("%-3s", status)),
			e.Duration,
			e.Path,
		)
		if e.Username != "" {
			line += styleSubtle.Render("  " + e.Username)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if e.Error != "" {
			b.WriteString(styleError.Render("    " + truncate(e.Error, 120)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
