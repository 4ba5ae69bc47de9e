package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/carcli/internal/types"
)

// handleKeyPress routes keyboard input to the handler of the current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.Cleanup()
		return tea.Quit
	}

	switch m.mode {
	case ModeLogin:
		return m.handleLoginKeys(msg)
	case ModeError:
		return m.handleErrorKeys(msg)
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeLocalFilter:
		return m.handleLocalFilterKeys(msg)
	case ModeFilterPanel:
		return m.handleFilterPanelKeys(msg)
	case ModeCarForm:
		return m.handleCarFormKeys(msg)
	case ModeConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ModeCart:
		return m.handleCartKeys(msg)
	case ModeBrands:
		return m.handleBrandsKeys(msg)
	case ModeBrandInput:
		return m.handleBrandInputKeys(msg)
	case ModeConfirmBrandDelete:
		return m.handleConfirmBrandDeleteKeys(msg)
	case ModeHistory:
		return m.handleHistoryKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	default:
		return m.handleListKeys(msg)
	}
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.Cleanup()
		return tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.focusLogin(1 - m.loginFocus)
		return nil
	case "enter":
		username := strings.TrimSpace(m.usernameInput.Value())
		if username == "" {
			m.focusLogin(0)
			return m.setErrorMessage("Username is required")
		}
		if m.loginFocus == 0 {
			m.focusLogin(1)
			return nil
		}
		m.errorMsg = ""
		m.statusMsg = "Logging in..."
		return m.loginCmd(username, m.passwordInput.Value())
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return cmd
}

// handleErrorKeys dismisses the blocking error modal
func (m *Model) handleErrorKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", "q", " ":
		m.mode = m.modalReturnTo
		m.modalMsg = ""
		if m.mode == ModeLogin {
			m.focusLogin(1)
		}
	}
	return nil
}

func (m *Model) handleListKeys(msg tea.KeyMsg) tea.Cmd {
	snap := m.ctrl.Snapshot()

	switch msg.String() {
	case "q":
		m.Cleanup()
		return tea.Quit

	case "j", "down":
		if m.cursor < len(snap.Cars)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(0, len(snap.Cars)-1)

	case "n", "right":
		m.cursor = 0
		return m.nextPageCmd()
	case "p", "left":
		m.cursor = 0
		return m.prevPageCmd()

	case "1", "2", "3", "4", "5", "6", "7":
		i := int(msg.String()[0] - '1')
		return m.sortCmd(types.SortKeys[i])

	case "+", "=":
		return m.pageSizeCmd(snap.PageSize + 1)
	case "-":
		if snap.PageSize > 1 {
			return m.pageSizeCmd(snap.PageSize - 1)
		}

	case "/":
		m.searchInput.SetValue(snap.SearchTerm)
		m.searchInput.CursorEnd()
		m.searchInput.Focus()
		m.mode = ModeSearch
		return nil
	case "f":
		m.localInput.SetValue(snap.LocalFilter)
		m.localInput.CursorEnd()
		m.localInput.Focus()
		m.mode = ModeLocalFilter
		return nil
	case "F":
		m.filterPanel = newFilterPanel(snap.Filters)
		m.mode = ModeFilterPanel
		return nil
	case "R":
		m.cursor = 0
		return m.resetFiltersCmd()
	case "esc":
		if snap.LocalFilter != "" {
			m.ctrl.FilterLocal("")
			m.clampCursor()
		}

	case "a":
		m.form = newCarForm(snap.Brands)
		m.mode = ModeCarForm
		return nil
	case "e":
		car, ok := m.ctrl.CarAt(m.cursor)
		if !ok {
			return nil
		}
		m.form = editCarForm(snap.Brands, car)
		m.mode = ModeCarForm
		return nil
	case "d":
		if car, ok := m.ctrl.CarAt(m.cursor); ok {
			m.deleteTarget = car
			m.mode = ModeConfirmDelete
		}
		return nil

	case "c":
		return m.addToCart()
	case "C":
		m.mode = ModeCart
		return nil
	case "b":
		m.brandCursor = 0
		m.mode = ModeBrands
		return m.loadBrandsCmd()
	case "y":
		return m.copyImageURL()
	case "H":
		if m.app.History == nil {
			return m.setErrorMessage("Request history is disabled")
		}
		return m.loadHistoryCmd()
	case "r":
		return m.loadAllCmd("Reloaded")
	case "L":
		return m.logout()
	case "?":
		m.mode = ModeHelp
		return nil
	}

	return nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.mode = ModeList
		return nil
	case "enter":
		m.searchInput.Blur()
		m.mode = ModeList
		m.cursor = 0
		return m.searchCmd(m.searchInput.Value())
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return cmd
}

// handleLocalFilterKeys narrows the fetched page as the user types
func (m *Model) handleLocalFilterKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.localInput.SetValue("")
		m.localInput.Blur()
		m.ctrl.FilterLocal("")
		m.mode = ModeList
		m.clampCursor()
		return nil
	case "enter":
		m.localInput.Blur()
		m.mode = ModeList
		return nil
	}

	var cmd tea.Cmd
	m.localInput, cmd = m.localInput.Update(msg)
	m.ctrl.FilterLocal(m.localInput.Value())
	m.cursor = 0
	return cmd
}

func (m *Model) handleFilterPanelKeys(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		m.filterPanel = nil
		m.mode = ModeList
		return nil
	}

	cmd, apply := m.filterPanel.Update(msg)
	if !apply {
		return cmd
	}

	criteria, err := m.filterPanel.criteria()
	if err != nil {
		m.filterPanel.err = err.Error()
		return nil
	}
	m.filterPanel = nil
	m.mode = ModeList
	m.cursor = 0
	return m.applyFiltersCmd(criteria)
}

func (m *Model) handleCarFormKeys(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		m.form = nil
		m.mode = ModeList
		return nil
	}
	if m.form.submitting {
		return nil
	}

	cmd, submit := m.form.Update(msg)
	if !submit {
		return cmd
	}

	draft, imagePath, err := m.form.draft()
	if err != nil {
		m.form.err = err.Error()
		return nil
	}
	m.form.err = ""
	m.form.submitting = true
	if m.form.editing {
		return m.updateCarCmd(m.form.carID, draft, imagePath)
	}
	return m.createCarCmd(draft, imagePath)
}

func (m *Model) handleConfirmDeleteKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeList
		return m.deleteCarCmd(m.deleteTarget)
	case "n", "N", "esc", "q":
		m.mode = ModeList
	}
	return nil
}

func (m *Model) handleCartKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "C":
		m.mode = ModeList
	case "x":
		m.ctrl.Cart().Clear()
		return m.setStatusMessage("Cart cleared")
	}
	return nil
}

func (m *Model) handleBrandsKeys(msg tea.KeyMsg) tea.Cmd {
	brands := m.ctrl.Snapshot().Brands

	switch msg.String() {
	case "esc", "q", "b":
		m.mode = ModeList
	case "j", "down":
		if m.brandCursor < len(brands)-1 {
			m.brandCursor++
		}
	case "k", "up":
		if m.brandCursor > 0 {
			m.brandCursor--
		}
	case "a":
		m.brandEditID = 0
		m.brandInput.SetValue("")
		m.brandInput.Focus()
		m.mode = ModeBrandInput
	case "e":
		if m.brandCursor < len(brands) {
			b := brands[m.brandCursor]
			m.brandEditID = b.ID
			m.brandInput.SetValue(b.Name)
			m.brandInput.CursorEnd()
			m.brandInput.Focus()
			m.mode = ModeBrandInput
		}
	case "d":
		if m.brandCursor < len(brands) {
			m.mode = ModeConfirmBrandDelete
		}
	case "r":
		return m.loadBrandsCmd()
	}
	return nil
}

func (m *Model) handleBrandInputKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.brandInput.Blur()
		m.mode = ModeBrands
		return nil
	case "enter":
		name := strings.TrimSpace(m.brandInput.Value())
		if name == "" {
			return m.setErrorMessage("Brand name is required")
		}
		m.brandInput.Blur()
		m.mode = ModeBrands
		if m.brandEditID == 0 {
			return m.addBrandCmd(name)
		}
		return m.renameBrandCmd(m.brandEditID, name)
	}

	var cmd tea.Cmd
	m.brandInput, cmd = m.brandInput.Update(msg)
	return cmd
}

func (m *Model) handleConfirmBrandDeleteKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeBrands
		brands := m.ctrl.Snapshot().Brands
		if m.brandCursor >= len(brands) {
			return nil
		}
		b := brands[m.brandCursor]
		return m.removeBrandCmd(b.ID, b.Name)
	case "n", "N", "esc", "q":
		m.mode = ModeBrands
	}
	return nil
}

func (m *Model) handleHistoryKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "H":
		m.mode = ModeList
	case "j", "down":
		m.history.ScrollDown(1)
	case "k", "up":
		m.history.ScrollUp(1)
	case "ctrl+d", "pgdown":
		m.history.ScrollDown(10)
	case "ctrl+u", "pgup":
		m.history.ScrollUp(10)
	case "r":
		return m.loadHistoryCmd()
	case "x":
		return m.clearHistoryCmd()
	}
	return nil
}

func (m *Model) handleHelpKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "?":
		m.mode = ModeList
	}
	return nil
}
