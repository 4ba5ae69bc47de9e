package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/studiowebux/carcli/internal/filter"
	"github.com/studiowebux/carcli/internal/pricing"
	"github.com/studiowebux/carcli/internal/types"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// OutputOptions selects how a result is printed
type OutputOptions struct {
	Format string // json, yaml, text
	Query  string // JMESPath expression, forces JSON
}

// ErrInvalidQuery is returned for a --query that is not valid JMESPath
var ErrInvalidQuery = errors.New("invalid JMESPath query")

// Validate rejects an unknown format or a malformed query before any
// request is made
func (o OutputOptions) Validate() error {
	switch strings.ToLower(o.Format) {
	case "", FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unsupported output format %q (use json, yaml or text)", o.Format)
	}
	if o.Query != "" && !filter.IsValidJMESPath(o.Query) {
		return fmt.Errorf("%w: %q", ErrInvalidQuery, o.Query)
	}
	return nil
}

// writeOutput prints v in the requested format; text falls back to the
// given renderer
func writeOutput(w io.Writer, v any, opts OutputOptions, text func() string) error {
	if opts.Query != "" {
		out, err := filter.ApplyValue(v, opts.Query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, out)
		return err
	}

	switch strings.ToLower(opts.Format) {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		_, err = fmt.Fprint(w, string(data))
		return err

	case "", FormatText:
		_, err := fmt.Fprintln(w, text())
		return err

	default:
		return fmt.Errorf("unsupported output format %q (use json, yaml or text)", opts.Format)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func formatEngine(e float64) string {
	return strconv.FormatFloat(e, 'f', 1, 64) + " L"
}

func newOrUsed(isNew bool) string {
	if isNew {
		return "new"
	}
	return "used"
}

func carRow(c types.Car) []string {
	id := "-"
	if c.HasID() {
		id = strconv.FormatInt(c.IDValue(), 10)
	}
	return []string{
		id,
		c.Brand.Name,
		c.Specification,
		formatEngine(c.EngineLiter),
		newOrUsed(c.IsNew),
		formatPrice(c.Price),
		c.ReleaseDateTime.String(),
		c.ImageFilename(),
	}
}

var carHeaders = []string{"ID", "BRAND", "SPECIFICATION", "ENGINE", "CONDITION", "PRICE", "RELEASED", "IMAGE"}

func renderCars(cars []types.Car) string {
	t := newTable(carHeaders...)
	for _, c := range cars {
		t.Row(carRow(c)...)
	}
	return t.Render()
}

func renderPage(page *types.PageResult) string {
	return fmt.Sprintf("%s\nPage %d of %d (%d cars)",
		renderCars(page.Content), page.PageNo+1, max(page.TotalPages, 1), page.TotalElements)
}

func renderBrands(brands []types.Brand) string {
	t := newTable("ID", "NAME")
	for _, b := range brands {
		t.Row(strconv.FormatInt(b.ID, 10), b.Name)
	}
	return t.Render()
}

func renderHistory(entries []types.HistoryEntry) string {
	t := newTable("TIME", "METHOD", "PATH", "STATUS", "DURATION", "USER", "ERROR")
	for _, e := range entries {
		status := "-"
		if e.Status > 0 {
			status = strconv.Itoa(e.Status)
		}
		t.Row(
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Method,
			e.Path,
			status,
			fmt.Sprintf("%dms", e.Duration),
			e.Username,
			e.Error,
		)
	}
	return t.Render()
}

func renderStats(stats []types.RouteStats) string {
	t := newTable("METHOD", "ROUTE", "CALLS", "OK", "ERRORS", "NETWORK", "AVG", "MIN", "MAX", "LAST")
	for _, s := range stats {
		t.Row(
			s.Method,
			s.Route,
			strconv.Itoa(s.TotalCalls),
			strconv.Itoa(s.SuccessCount),
			strconv.Itoa(s.ErrorCount),
			strconv.Itoa(s.NetworkErrors),
			fmt.Sprintf("%.0fms", s.AvgDurationMs),
			fmt.Sprintf("%dms", s.MinDurationMs),
			fmt.Sprintf("%dms", s.MaxDurationMs),
			s.LastCalled.Format("2006-01-02 15:04:05"),
		)
	}
	return t.Render()
}

// boundsReport is the structured output of "cars bounds"
type boundsReport struct {
	Min  float64       `json:"min" yaml:"min"`
	Max  float64       `json:"max" yaml:"max"`
	Cars []colouredCar `json:"cars" yaml:"cars"`
}

type colouredCar struct {
	ID            int64   `json:"id" yaml:"id"`
	Brand         string  `json:"brand" yaml:"brand"`
	Specification string  `json:"specification" yaml:"specification"`
	Price         float64 `json:"price" yaml:"price"`
	Color         string  `json:"color" yaml:"color"`
	Hex           string  `json:"hex" yaml:"hex"`
}

func newBoundsReport(cars []types.Car) boundsReport {
	g := pricing.NewGradient(cars)
	report := boundsReport{Min: g.Min, Max: g.Max, Cars: make([]colouredCar, 0, len(cars))}
	for _, c := range cars {
		rgb := g.Color(c.Price)
		report.Cars = append(report.Cars, colouredCar{
			ID:            c.IDValue(),
			Brand:         c.Brand.Name,
			Specification: c.Specification,
			Price:         c.Price,
			Color:         rgb.String(),
			Hex:           rgb.Hex(),
		})
	}
	return report
}

func renderBounds(r boundsReport) string {
	t := newTable("ID", "BRAND", "SPECIFICATION", "PRICE", "COLOR")
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 3 && row >= 0 && row < len(r.Cars) {
			return cellStyle.Foreground(lipgloss.Color(r.Cars[row].Hex))
		}
		return cellStyle
	})
	for _, c := range r.Cars {
		t.Row(strconv.FormatInt(c.ID, 10), c.Brand, c.Specification, formatPrice(c.Price), c.Color)
	}
	return fmt.Sprintf("Min price: %s\nMax price: %s\n%s", formatPrice(r.Min), formatPrice(r.Max), t.Render())
}
