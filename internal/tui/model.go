package tui

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/carcli/internal/cli"
	"github.com/studiowebux/carcli/internal/gateway"
	"github.com/studiowebux/carcli/internal/session"
	"github.com/studiowebux/carcli/internal/types"
	"github.com/studiowebux/carcli/internal/viewstate"
	"go.uber.org/zap"
)

// Mode represents the current TUI mode
type Mode int

const (
	ModeLogin Mode = iota
	ModeList
	ModeSearch
	ModeLocalFilter
	ModeFilterPanel
	ModeCarForm
	ModeConfirmDelete
	ModeCart
	ModeBrands
	ModeBrandInput
	ModeConfirmBrandDelete
	ModeHistory
	ModeHelp
	ModeError
)

// Model represents the TUI state
type Model struct {
	app  *cli.App
	ctrl *viewstate.Controller
	mode Mode

	width  int
	height int

	// Car list
	cursor int

	// Login
	usernameInput textinput.Model
	passwordInput textinput.Model
	loginFocus    int

	// Search and local filter
	searchInput textinput.Model
	localInput  textinput.Model

	// Forms
	form         *carForm
	filterPanel  *filterPanel
	deleteTarget types.Car

	// Brands panel
	brandCursor int
	brandInput  textinput.Model
	brandEditID int64 // 0 when adding

	history *HistoryState

	requests *RequestState

	// Error modal
	modalMsg      string
	modalReturnTo Mode

	statusMsg     string
	errorMsg      string
	statusTimeout time.Duration
}

// New creates a TUI model over app. Without a valid session the login
// screen is shown first.
func New(app *cli.App) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Prompt = "Username: "
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	search := textinput.New()
	search.Prompt = "Search: "
	search.CharLimit = 100

	local := textinput.New()
	local.Prompt = "Filter page: "
	local.CharLimit = 100

	brand := textinput.New()
	brand.Prompt = "Brand name: "
	brand.CharLimit = 100

	m := Model{
		app:           app,
		ctrl:          app.Controller(),
		mode:          ModeLogin,
		usernameInput: username,
		passwordInput: password,
		searchInput:   search,
		localInput:    local,
		brandInput:    brand,
		history:       NewHistoryState(),
		requests:      NewRequestState(),
		statusTimeout: StatusTimeout,
	}

	if app.Session.IsAuthenticated() {
		m.mode = ModeList
	} else {
		m.usernameInput.SetValue(app.Session.Username())
		m.focusLogin(0)
	}
	return m
}

// Init loads the first page when a session is already present
func (m *Model) Init() tea.Cmd {
	if m.mode == ModeList {
		return m.loadAllCmd("")
	}
	return textinput.Blink
}

// Cleanup cancels every in-flight request
func (m *Model) Cleanup() {
	m.requests.CancelAll()
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.history.Resize(m.width-ModalWidthMargin-4, m.height-ModalHeightMargin-6)

	case loginResultMsg:
		cmd = m.handleLoginResult(msg)

	case loadedMsg:
		cmd = m.handleResult(msg.status, msg.err)
		m.clampCursor()

	case mutationMsg:
		// the form stays open on failure so nothing typed is lost
		if m.mode == ModeCarForm && m.form != nil {
			m.form.submitting = false
			if msg.err != nil && !isAuthError(msg.err) {
				m.form.err = msg.err.Error()
				break
			}
			if msg.err == nil {
				m.form = nil
				m.mode = ModeList
			}
		}
		cmd = m.handleResult(msg.status, msg.err)
		m.clampCursor()

	case brandsMsg:
		cmd = m.handleResult(msg.status, msg.err)
		if m.brandCursor >= len(m.ctrl.Snapshot().Brands) {
			m.brandCursor = max(0, len(m.ctrl.Snapshot().Brands)-1)
		}

	case historyLoadedMsg:
		if msg.err != nil {
			cmd = m.setErrorMessage("Failed to load history: " + msg.err.Error())
			break
		}
		m.history.SetEntries(msg.entries)
		m.mode = ModeHistory

	case clearStatusMsg:
		m.statusMsg = ""

	case clearErrorMsg:
		m.errorMsg = ""
	}

	return m, cmd
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.mode {
	case ModeLogin:
		return m.renderLogin()
	case ModeError:
		return m.renderErrorModal()
	case ModeCarForm:
		return m.renderCarForm()
	case ModeFilterPanel:
		return m.renderFilterPanel()
	case ModeConfirmDelete:
		return m.renderConfirmDelete()
	case ModeCart:
		return m.renderCart()
	case ModeBrands, ModeBrandInput, ModeConfirmBrandDelete:
		return m.renderBrands()
	case ModeHistory:
		return m.renderHistory()
	case ModeHelp:
		return m.renderHelp()
	default:
		return m.renderMain()
	}
}

// Custom message types
type loginResultMsg struct {
	err error
}

type loadedMsg struct {
	status string
	err    error
}

type mutationMsg struct {
	status string
	err    error
}

type brandsMsg struct {
	status string
	err    error
}

type historyLoadedMsg struct {
	entries []types.HistoryEntry
	err     error
}

type clearStatusMsg struct{}
type clearErrorMsg struct{}

func (m *Model) handleLoginResult(msg loginResultMsg) tea.Cmd {
	m.passwordInput.SetValue("")
	if msg.err != nil {
		if errors.Is(msg.err, cli.ErrInvalidCredentials) {
			m.showModal(cli.InvalidCredentialsMessage, ModeLogin)
		} else {
			m.showModal(msg.err.Error(), ModeLogin)
		}
		return nil
	}

	m.ctrl = m.app.Controller()
	m.cursor = 0
	m.mode = ModeList
	return tea.Batch(
		m.loadAllCmd(""),
		m.setStatusMessage("Logged in as "+m.app.Session.Username()),
	)
}

// handleResult shows the outcome of a command and sends the user back to
// the login screen when the session is no longer accepted
func (m *Model) handleResult(status string, err error) tea.Cmd {
	if err == nil {
		if status == "" {
			return nil
		}
		return m.setStatusMessage(status)
	}

	if isAuthError(err) {
		m.app.Logger.Warn("session rejected", zap.Error(err))
		_ = m.app.Session.Clear()
		m.mode = ModeLogin
		m.focusLogin(1)
		return m.setErrorMessage("Session expired, please log in again")
	}
	return m.setErrorMessage(err.Error())
}

func isAuthError(err error) bool {
	if errors.Is(err, session.ErrNotAuthenticated) {
		return true
	}
	status := gateway.StatusOf(err)
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func (m *Model) showModal(msg string, returnTo Mode) {
	m.modalMsg = msg
	m.modalReturnTo = returnTo
	m.mode = ModeError
}

func (m *Model) focusLogin(field int) {
	m.loginFocus = field
	if field == 0 {
		m.usernameInput.Focus()
		m.passwordInput.Blur()
	} else {
		m.usernameInput.Blur()
		m.passwordInput.Focus()
	}
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.Snapshot().Cars)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Helper methods for setting messages with a timeout
func (m *Model) setStatusMessage(msg string) tea.Cmd {
	m.statusMsg = truncate(msg, 100)
	m.errorMsg = ""
	return tea.Tick(m.statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) setErrorMessage(msg string) tea.Cmd {
	m.errorMsg = truncate(msg, 100)
	return tea.Tick(m.statusTimeout, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
