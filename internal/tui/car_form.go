package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
	"github.com/studiowebux/carcli/internal/types"
)

// Car form fields, in tab order
const (
	fieldBrand = iota
	fieldSpec
	fieldEngine
	fieldNew
	fieldPrice
	fieldRelease
	fieldImage
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Brand",
	"Specification",
	"Engine (L)",
	"New (y/n)",
	"Price",
	"Released",
	"Image file",
}

// brandSource adapts a brand list to fuzzy.Source
type brandSource []types.Brand

func (b brandSource) String(i int) string { return b[i].Name }
func (b brandSource) Len() int            { return len(b) }

// carForm edits a car draft. The brand field is a fuzzy picker over the
// known brands.
type carForm struct {
	editing bool
	carID   int64 // car being edited, resolved to a row on submit

	inputs [fieldCount]textinput.Model
	focus  int

	brands      []types.Brand
	matches     fuzzy.Matches
	pickerIndex int
	brandID     int64

	err        string
	submitting bool
}

func newCarForm(brands []types.Brand) *carForm {
	f := &carForm{brands: brands}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		f.inputs[i] = in
	}
	f.inputs[fieldEngine].Placeholder = "1.6"
	f.inputs[fieldNew].Placeholder = "n"
	f.inputs[fieldPrice].Placeholder = "25000"
	f.inputs[fieldRelease].Placeholder = "2024-01-31"
	f.inputs[fieldImage].Placeholder = "optional path to a picture"
	f.refreshMatches()
	f.setFocus(fieldBrand)
	return f
}

// editCarForm prefills the form from car
func editCarForm(brands []types.Brand, car types.Car) *carForm {
	f := newCarForm(brands)
	f.editing = true
	f.carID = car.IDValue()
	f.brandID = car.Brand.ID
	f.inputs[fieldBrand].SetValue(car.Brand.Name)
	f.inputs[fieldSpec].SetValue(car.Specification)
	if car.EngineLiter != 0 {
		f.inputs[fieldEngine].SetValue(strconv.FormatFloat(car.EngineLiter, 'f', -1, 64))
	}
	f.inputs[fieldNew].SetValue(yesNo(car.IsNew))
	f.inputs[fieldPrice].SetValue(strconv.FormatFloat(car.Price, 'f', -1, 64))
	if !car.ReleaseDateTime.IsZero() {
		f.inputs[fieldRelease].SetValue(car.ReleaseDateTime.String())
	}
	f.refreshMatches()
	return f
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func (f *carForm) title() string {
	if f.editing {
		return "Edit car"
	}
	return "Add car"
}

func (f *carForm) setFocus(field int) {
	if field < 0 {
		field = fieldCount - 1
	}
	if field >= fieldCount {
		field = 0
	}
	if f.focus == fieldBrand && field != fieldBrand {
		f.pickBrand()
	}
	f.focus = field
	for i := range f.inputs {
		if i == field {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// refreshMatches recomputes the picker list from the brand input
func (f *carForm) refreshMatches() {
	pattern := strings.TrimSpace(f.inputs[fieldBrand].Value())
	if pattern == "" {
		f.matches = make(fuzzy.Matches, len(f.brands))
		for i, b := range f.brands {
			f.matches[i] = fuzzy.Match{Str: b.Name, Index: i}
		}
	} else {
		f.matches = fuzzy.FindFrom(pattern, brandSource(f.brands))
	}
	if f.pickerIndex >= len(f.matches) {
		f.pickerIndex = 0
	}
}

// pickBrand resolves the brand input to the highlighted match. An exact
// name match wins over the fuzzy ranking.
func (f *carForm) pickBrand() {
	value := strings.TrimSpace(f.inputs[fieldBrand].Value())
	for _, b := range f.brands {
		if strings.EqualFold(b.Name, value) {
			f.brandID = b.ID
			f.inputs[fieldBrand].SetValue(b.Name)
			return
		}
	}
	if value == "" || len(f.matches) == 0 {
		f.brandID = 0
		return
	}
	b := f.brands[f.matches[f.pickerIndex].Index]
	f.brandID = b.ID
	f.inputs[fieldBrand].SetValue(b.Name)
	f.refreshMatches()
}

// Update routes a key to the focused input. submit reports that the user
// asked to save the form.
func (f *carForm) Update(msg tea.KeyMsg) (cmd tea.Cmd, submit bool) {
	switch msg.String() {
	case "ctrl+s":
		if f.focus == fieldBrand {
			f.pickBrand()
		}
		return nil, true
	case "tab":
		f.setFocus(f.focus + 1)
		return nil, false
	case "shift+tab":
		f.setFocus(f.focus - 1)
		return nil, false
	case "enter":
		if f.focus == fieldCount-1 {
			return nil, true
		}
		f.setFocus(f.focus + 1)
		return nil, false
	case "up":
		if f.focus == fieldBrand {
			if f.pickerIndex > 0 {
				f.pickerIndex--
			}
			return nil, false
		}
		f.setFocus(f.focus - 1)
		return nil, false
	case "down":
		if f.focus == fieldBrand {
			if f.pickerIndex < len(f.matches)-1 {
				f.pickerIndex++
			}
			return nil, false
		}
		f.setFocus(f.focus + 1)
		return nil, false
	}

	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	if f.focus == fieldBrand {
		f.brandID = 0
		f.pickerIndex = 0
		f.refreshMatches()
	}
	return cmd, false
}

var errBrandRequired = errors.New("pick a brand from the list")

// draft validates the inputs and builds the payload plus the optional
// image path
func (f *carForm) draft() (types.CarDraft, string, error) {
	var d types.CarDraft

	if f.brandID == 0 {
		return d, "", errBrandRequired
	}
	d.BrandID = f.brandID
	d.Specification = strings.TrimSpace(f.inputs[fieldSpec].Value())

	engine, err := optionalFloat(fieldLabels[fieldEngine], f.inputs[fieldEngine].Value())
	if err != nil {
		return d, "", err
	}
	d.EngineLiter = engine

	isNew, err := parseYesNo(f.inputs[fieldNew].Value())
	if err != nil {
		return d, "", err
	}
	d.IsNew = types.Bool(isNew)

	price, err := optionalFloat(fieldLabels[fieldPrice], f.inputs[fieldPrice].Value())
	if err != nil {
		return d, "", err
	}
	if price != nil && *price < 0 {
		return d, "", fmt.Errorf("%s must not be negative", fieldLabels[fieldPrice])
	}
	d.Price = price

	if s := strings.TrimSpace(f.inputs[fieldRelease].Value()); s != "" {
		release, err := types.ParseLocalDateTime(s)
		if err != nil {
			return d, "", err
		}
		d.ReleaseDateTime = &release
	}

	return d, strings.TrimSpace(f.inputs[fieldImage].Value()), nil
}

func optionalFloat(label, s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", label)
	}
	return &v, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		return true, nil
	case "", "n", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%s must be y or n", fieldLabels[fieldNew])
}
