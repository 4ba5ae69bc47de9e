package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/carcli/internal/types"
)

// Filter panel fields, in tab order
const (
	filterBrand = iota
	filterSpec
	filterEngine
	filterNew
	filterMinPrice
	filterMaxPrice
	filterMinDate
	filterMaxDate
	filterCount
)

var filterLabels = [filterCount]string{
	"Brand",
	"Specification",
	"Engine (L)",
	"New only (y/n)",
	"Min price",
	"Max price",
	"Released from",
	"Released until",
}

// filterPanel edits the server-side filter criteria
type filterPanel struct {
	inputs [filterCount]textinput.Model
	focus  int
	err    string
}

func newFilterPanel(current types.FilterCriteria) *filterPanel {
	p := &filterPanel{}
	for i := range p.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 60
		p.inputs[i] = in
	}

	p.inputs[filterBrand].SetValue(current.Brand)
	p.inputs[filterSpec].SetValue(current.Specification)
	p.inputs[filterEngine].SetValue(floatValue(current.EngineLiter))
	if current.IsNew != nil && *current.IsNew {
		p.inputs[filterNew].SetValue("y")
	}
	p.inputs[filterMinPrice].SetValue(floatValue(current.MinPrice))
	p.inputs[filterMaxPrice].SetValue(floatValue(current.MaxPrice))
	p.inputs[filterMinDate].SetValue(dateValue(current.MinDate))
	p.inputs[filterMaxDate].SetValue(dateValue(current.MaxDate))
	p.inputs[filterMinDate].Placeholder = "2020-01-01"
	p.inputs[filterMaxDate].Placeholder = "2024-12-31"

	p.setFocus(0)
	return p
}

func floatValue(f *float64) string {
	if f == nil || *f == 0 {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func dateValue(d *types.LocalDateTime) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (p *filterPanel) setFocus(field int) {
	p.focus = (field + filterCount) % filterCount
	for i := range p.inputs {
		if i == p.focus {
			p.inputs[i].Focus()
		} else {
			p.inputs[i].Blur()
		}
	}
}

// Update routes a key to the focused input. apply reports that the user
// confirmed the panel.
func (p *filterPanel) Update(msg tea.KeyMsg) (cmd tea.Cmd, apply bool) {
	switch msg.String() {
	case "enter", "ctrl+s":
		return nil, true
	case "tab", "down":
		p.setFocus(p.focus + 1)
		return nil, false
	case "shift+tab", "up":
		p.setFocus(p.focus - 1)
		return nil, false
	}
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return cmd, false
}

// criteria validates the inputs; blank fields stay unset
func (p *filterPanel) criteria() (types.FilterCriteria, error) {
	var f types.FilterCriteria
	var err error

	f.Brand = strings.TrimSpace(p.inputs[filterBrand].Value())
	f.Specification = strings.TrimSpace(p.inputs[filterSpec].Value())

	if f.EngineLiter, err = optionalFloat(filterLabels[filterEngine], p.inputs[filterEngine].Value()); err != nil {
		return f, err
	}
	isNew, err := parseYesNo(p.inputs[filterNew].Value())
	if err != nil {
		return f, err
	}
	if isNew {
		f.IsNew = types.Bool(true)
	}
	if f.MinPrice, err = optionalFloat(filterLabels[filterMinPrice], p.inputs[filterMinPrice].Value()); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalFloat(filterLabels[filterMaxPrice], p.inputs[filterMaxPrice].Value()); err != nil {
		return f, err
	}
	if f.MinDate, err = optionalDate(p.inputs[filterMinDate].Value()); err != nil {
		return f, err
	}
	if f.MaxDate, err = optionalDate(p.inputs[filterMaxDate].Value()); err != nil {
		return f, err
	}
	return f, nil
}

func optionalDate(s string) (*types.LocalDateTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := types.ParseLocalDateTime(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
