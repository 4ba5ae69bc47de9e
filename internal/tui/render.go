package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/studiowebux/carcli/internal/types"
	"github.com/studiowebux/carcli/internal/viewstate"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan).
			Padding(0, 1)

	styleCell = lipgloss.NewStyle().Padding(0, 1)

	styleMatch = lipgloss.NewStyle().Bold(true).Underline(true)
)

// table columns; sortKey is the key bound to the column's number, if any
var carColumns = []struct {
	title   string
	sortKey types.SortKey
}{
	{"ID", types.SortID},
	{"BRAND", types.SortBrand},
	{"SPECIFICATION", types.SortSpecification},
	{"ENGINE", types.SortEngineLiter},
	{"CONDITION", types.SortIsNew},
	{"PRICE", types.SortPrice},
	{"RELEASED", types.SortReleaseDateTime},
	{"IMAGE", types.SortNone},
}

const priceColumn = 5

func formatPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', 2, 64)
}

func sortKeyNumber(key types.SortKey) int {
	for i, k := range types.SortKeys {
		if k == key {
			return i + 1
		}
	}
	return 0
}

func columnHeader(title string, key types.SortKey, snap viewstate.Snapshot) string {
	if key == types.SortNone {
		return title
	}
	h := fmt.Sprintf("%d %s", sortKeyNumber(key), title)
	if snap.SortKey == key {
		if snap.SortDir == types.SortDesc {
			h += " ▼"
		} else {
			h += " ▲"
		}
	}
	return h
}

// renderMain renders the car list with its header and status bar
func (m Model) renderMain() string {
	snap := m.ctrl.Snapshot()

	header := m.renderHeader(snap)
	var body string
	switch {
	case !snap.Loaded:
		body = styleSubtle.Render("Loading cars...")
	case len(snap.Cars) == 0:
		body = styleSubtle.Render("No cars match the current query")
	default:
		body = m.renderCarTable(snap)
	}

	var input string
	switch m.mode {
	case ModeSearch:
		input = m.searchInput.View()
	case ModeLocalFilter:
		input = m.localInput.View()
	}

	parts := []string{header, body}
	if input != "" {
		parts = append(parts, input)
	}
	main := lipgloss.JoinVertical(lipgloss.Left, parts...)

	mainHeight := max(1, m.height-StatusBarLines)
	main = lipgloss.NewStyle().Height(mainHeight).MaxHeight(mainHeight).Render(main)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) renderHeader(snap viewstate.Snapshot) string {
	title := styleTitle.Render("carcli")
	if user := m.app.Session.Username(); user != "" {
		title += styleSubtle.Render("  " + user + " @ " + m.app.Gateway.BaseURL())
	}

	pages := max(snap.TotalPages, 1)
	info := []string{
		fmt.Sprintf("Page %d/%d", snap.Page+1, pages),
		fmt.Sprintf("%d cars", snap.TotalElements),
		fmt.Sprintf("%d per page", snap.PageSize),
	}
	if snap.SortKey != types.SortNone {
		info = append(info, fmt.Sprintf("sort %s %s", snap.SortKey, snap.SortDir))
	}
	if snap.SearchTerm != "" {
		info = append(info, fmt.Sprintf("search %q", snap.SearchTerm))
	}
	if n := snap.Filters.ActiveCount(); n > 0 {
		info = append(info, fmt.Sprintf("%d filter(s)", n))
	}
	if snap.LocalFilter != "" {
		info = append(info, fmt.Sprintf("page filter %q", snap.LocalFilter))
	}
	if cart := m.ctrl.Cart(); cart.Len() > 0 {
		info = append(info, fmt.Sprintf("cart %d (%s)", cart.Len(), formatPrice(cart.Total())))
	}

	return title + "\n" + styleSubtle.Render(strings.Join(info, " · ")) + "\n"
}

func (m Model) renderCarTable(snap viewstate.Snapshot) string {
	headers := make([]string, len(carColumns))
	for i, c := range carColumns {
		headers[i] = columnHeader(c.title, c.sortKey, snap)
	}

	colours := make([]string, len(snap.Cars))
	rows := make([][]string, len(snap.Cars))
	for i, c := range snap.Cars {
		colours[i] = snap.Gradient.Color(c.Price).Hex()
		rows[i] = carCells(c)
	}

	cursor := m.cursor
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleSubtle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			style := styleCell
			if row == cursor {
				style = styleSelected.Padding(0, 1)
			}
			if col == priceColumn && row >= 0 && row < len(colours) {
				style = style.Foreground(lipgloss.Color(colours[row])).Bold(true)
			}
			return style
		})
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.Render()
}

func carCells(c types.Car) []string {
	id := "-"
	if c.HasID() {
		id = strconv.FormatInt(c.IDValue(), 10)
	}
	condition := "used"
	if c.IsNew {
		condition = "new"
	}
	released := ""
	if !c.ReleaseDateTime.IsZero() {
		released = c.ReleaseDateTime.Format("2006-01-02")
	}
	return []string{
		id,
		c.Brand.Name,
		c.Specification,
		strconv.FormatFloat(c.EngineLiter, 'f', 1, 64) + " L",
		condition,
		formatPrice(c.Price),
		released,
		c.ImageFilename(),
	}
}

// renderStatusBar shows the error, status or key hints, in that order
func (m Model) renderStatusBar() string {
	var text string
	style := styleSubtle

	switch {
	case m.errorMsg != "":
		text = m.errorMsg
		style = styleError
	case m.statusMsg != "":
		text = m.statusMsg
		style = styleSuccess
	case m.mode == ModeSearch:
		text = "enter search · esc cancel"
	case m.mode == ModeLocalFilter:
		text = "filters this page as you type · enter keep · esc clear"
	default:
		text = "j/k move · n/p page · 1-7 sort · / search · f filter page · F filters · a add · e edit · d delete · c cart · b brands · ? help · q quit"
	}

	if n := m.requests.InFlight(); n > 0 {
		text = styleWarning.Render("Loading... ") + text
	}
	if phase := m.ctrl.Phase(); phase != viewstate.PhaseIdle {
		text = styleWarning.Render("["+phase.String()+"] ") + text
	}

	return style.Width(max(m.width, 1)).MaxWidth(max(m.width, 1)).Render(text)
}

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(m.usernameInput.View())
	b.WriteString("\n\n")
	b.WriteString(m.passwordInput.View())
	b.WriteString("\n\n")
	b.WriteString(styleSubtle.Render("API: " + m.app.Gateway.BaseURL()))

	footer := "tab switch field · enter log in · esc quit"
	if m.errorMsg != "" {
		footer = styleError.Render(m.errorMsg) + "\n" + footer
	} else if m.statusMsg != "" {
		footer = styleSuccess.Render(m.statusMsg) + "\n" + footer
	}
	return renderModal(modalConfig{
		Title:  "carcli · Log in",
		Body:   b.String(),
		Footer: footer,
		Width:  50,
	}, m.width, m.height)
}

func (m Model) renderErrorModal() string {
	return renderModal(modalConfig{
		Title:       "Error",
		Body:        styleError.Render(m.modalMsg),
		Footer:      "enter to continue",
		Width:       40,
		BorderColor: colorRed,
	}, m.width, m.height)
}

func (m Model) renderCarForm() string {
	f := m.form
	var b strings.Builder

	for i := range f.inputs {
		label := fmt.Sprintf("%-14s", fieldLabels[i])
		if i == f.focus {
			label = styleTitle.Render(label)
		} else {
			label = styleSubtle.Render(label)
		}
		b.WriteString(label + " " + f.inputs[i].View() + "\n")

		if i == fieldBrand && f.focus == fieldBrand {
			b.WriteString(renderBrandPicker(f))
		}
	}

	if f.err != "" {
		b.WriteString("\n" + styleError.Render(f.err) + "\n")
	}
	if f.submitting {
		b.WriteString("\n" + styleWarning.Render("Saving...") + "\n")
	}

	return renderModal(modalConfig{
		Title:  f.title(),
		Body:   strings.TrimRight(b.String(), "\n"),
		Footer: "tab/shift+tab move · ↑/↓ pick brand · enter next · ctrl+s save · esc cancel",
		Width:  70,
	}, m.width, m.height)
}

// renderBrandPicker lists the fuzzy matches, highlighting matched runes
func renderBrandPicker(f *carForm) string {
	if len(f.matches) == 0 {
		return styleSubtle.Render("               no matching brand") + "\n"
	}

	start := 0
	if f.pickerIndex >= PickerVisibleRows {
		start = f.pickerIndex - PickerVisibleRows + 1
	}
	end := min(len(f.matches), start+PickerVisibleRows)

	var b strings.Builder
	for i := start; i < end; i++ {
		match := f.matches[i]
		name := highlightMatch(match.Str, match.MatchedIndexes)
		line := "               " + name
		if i == f.pickerIndex {
			line = "             " + styleSelected.Render("> "+name)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func highlightMatch(s string, indexes []int) string {
	if len(indexes) == 0 {
		return s
	}
	matched := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		matched[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if matched[i] {
			b.WriteString(styleMatch.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (m Model) renderFilterPanel() string {
	p := m.filterPanel
	var b strings.Builder
	for i := range p.inputs {
		label := fmt.Sprintf("%-15s", filterLabels[i])
		if i == p.focus {
			label = styleTitle.Render(label)
		} else {
			label = styleSubtle.Render(label)
		}
		b.WriteString(label + " " + p.inputs[i].View() + "\n")
	}
	if p.err != "" {
		b.WriteString("\n" + styleError.Render(p.err) + "\n")
	}
	return renderModal(modalConfig{
		Title:  "Filters",
		Body:   strings.TrimRight(b.String(), "\n"),
		Footer: "tab move · enter apply · esc cancel · blank fields are ignored",
		Width:  60,
	}, m.width, m.height)
}

func (m Model) renderConfirmDelete() string {
	car := m.deleteTarget
	body := fmt.Sprintf("Delete %s %s (%s)?", car.Brand.Name, car.Specification, formatPrice(car.Price))
	return renderModal(modalConfig{
		Title:       "Delete car",
		Body:        body,
		Footer:      "y delete · n cancel",
		Width:       50,
		BorderColor: colorYellow,
	}, m.width, m.height)
}

func (m Model) renderCart() string {
	cart := m.ctrl.Cart()
	items := cart.Items()

	var body string
	if len(items) == 0 {
		body = styleSubtle.Render("The cart is empty. Press c on a car to add it.")
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(styleSubtle).
			Headers("BRAND", "SPECIFICATION", "PRICE").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return styleHeader
				}
				return styleCell
			})
		for _, c := range items {
			t.Row(c.Brand.Name, c.Specification, formatPrice(c.Price))
		}
		body = t.Render() + "\n" + styleTitle.Render(fmt.Sprintf("Total: %s (%d items)", formatPrice(cart.Total()), len(items)))
	}

	return renderModal(modalConfig{
		Title:  "Cart",
		Body:   body,
		Footer: "x clear · esc close",
		Width:  70,
	}, m.width, m.height)
}

func (m Model) renderBrands() string {
	brands := m.ctrl.Snapshot().Brands

	var b strings.Builder
	if len(brands) == 0 {
		b.WriteString(styleSubtle.Render("No brands loaded"))
	}
	for i, brand := range brands {
		line := fmt.Sprintf("%4d  %s", brand.ID, brand.Name)
		if i == m.brandCursor {
			line = styleSelected.Render(line)
		}
		b.WriteString(line + "\n")
	}

	footer := "a add · e rename · d delete · r reload · esc close"
	switch m.mode {
	case ModeBrandInput:
		b.WriteString("\n" + m.brandInput.View())
		footer = "enter save · esc cancel"
	case ModeConfirmBrandDelete:
		if m.brandCursor < len(brands) {
			b.WriteString("\n" + styleWarning.Render(fmt.Sprintf("Delete brand %s? (y/n)", brands[m.brandCursor].Name)))
		}
		footer = "y delete · n cancel"
	}
	if m.errorMsg != "" {
		footer = styleError.Render(m.errorMsg) + "\n" + footer
	} else if m.statusMsg != "" {
		footer = styleSuccess.Render(m.statusMsg) + "\n" + footer
	}

	return renderModal(modalConfig{
		Title:  "Brands",
		Body:   strings.TrimRight(b.String(), "\n"),
		Footer: footer,
		Width:  50,
	}, m.width, m.height)
}

func (m Model) renderHistory() string {
	footer := "j/k scroll · r reload · x clear · esc close"
	if m.errorMsg != "" {
		footer = styleError.Render(m.errorMsg) + "\n" + footer
	}
	return renderModal(modalConfig{
		Title:  fmt.Sprintf("Request history (%d)", len(m.history.GetEntries())),
		Body:   m.history.View(),
		Footer: footer,
		Width:  m.width - ModalWidthMargin,
	}, m.width, m.height)
}

func (m Model) renderHelp() string {
	sections := []struct {
		title string
		keys  [][2]string
	}{
		{"Navigation", [][2]string{
			{"j/k ↑/↓", "move selection"},
			{"n/p →/←", "next / previous page"},
			{"+/-", "grow / shrink page size"},
			{"r", "reload"},
		}},
		{"Query", [][2]string{
			{"1-7", "sort by column (again to flip)"},
			{"/", "server search"},
			{"f", "filter the current page"},
			{"F / R", "filter panel / reset filters"},
		}},
		{"Cars", [][2]string{
			{"a / e / d", "add / edit / delete"},
			{"c / C", "add to cart / view cart"},
			{"y", "copy image URL"},
		}},
		{"Other", [][2]string{
			{"b", "brands"},
			{"H", "request history"},
			{"L", "log out"},
			{"q", "quit"},
		}},
	}

	var b strings.Builder
	for _, s := range sections {
		b.WriteString(styleTitle.Render(s.title) + "\n")
		for _, k := range s.keys {
			b.WriteString(fmt.Sprintf("  %-10s %s\n", k[0], k[1]))
		}
		b.WriteString("\n")
	}

	return renderModal(modalConfig{
		Title:  "Keys",
		Body:   strings.TrimRight(b.String(), "\n"),
		Footer: "esc close",
		Width:  50,
	}, m.width, m.height)
}
