package tui

import (
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/carcli/internal/cli"
	"github.com/studiowebux/carcli/internal/config"
	"github.com/studiowebux/carcli/internal/history"
	"github.com/studiowebux/carcli/internal/mock"
	"github.com/studiowebux/carcli/internal/session"
)

// cmdTimeout bounds each command run by drain; cursor blink ticks are
// slower than this and get dropped
const cmdTimeout = 300 * time.Millisecond

// CreateTestApp wires an App to an in-memory mock API with a fresh session
// and history database
func CreateTestApp(t *testing.T) *cli.App {
	t.Helper()

	srv := httptest.NewServer(mock.NewServer(mock.DefaultConfig(), nil).Handler())
	t.Cleanup(srv.Close)

	tempDir := t.TempDir()
	cfg := &config.Config{
		API: config.APIConfig{
			BaseURL:  srv.URL,
			LoginURL: srv.URL + "/user/login",
			Timeout:  5 * time.Second,
		},
		View:    config.ViewConfig{PageSize: 5},
		History: config.HistoryConfig{Enabled: true},
	}

	sess := session.NewManagerAt(filepath.Join(tempDir, ".session.json"))
	hist, err := history.NewManager(filepath.Join(tempDir, "test.db"), sess.Username)
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}

	app := cli.NewApp(cfg, nil, sess, hist)
	t.Cleanup(func() { app.Close() })
	return app
}

// CreateTestModel creates a logged-in Model with the first page loaded
func CreateTestModel(t *testing.T) *Model {
	t.Helper()

	app := CreateTestApp(t)
	if err := app.Authenticate(t.Context(), "admin", "admin"); err != nil {
		t.Fatalf("Failed to log in: %v", err)
	}

	m := New(app)
	m.statusTimeout = time.Millisecond
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	drain(t, &m, m.Init())
	return &m
}

// CreateLoggedOutModel creates a Model showing the login screen
func CreateLoggedOutModel(t *testing.T) *Model {
	t.Helper()

	m := New(CreateTestApp(t))
	m.statusTimeout = time.Millisecond
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return &m
}

// drain runs cmd and feeds every resulting message back into m until no
// command is left. Status timers are dropped so messages stay visible.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg, ok := runCmd(next)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case clearStatusMsg, clearErrorMsg:
		case tea.QuitMsg:
			return
		default:
			_, follow := m.Update(msg)
			queue = append(queue, follow)
		}
	}
}

func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

// press sends a key to m and drains the resulting command
func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		drain(t, m, cmd)
	}
}

// typeText sends s one rune at a time without draining
func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// AssertModelField is a generic helper for checking model field values
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError verifies that an error is nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
