package types

import (
	"net/url"
	"strconv"
)

// FilterCriteria is the optional predicate set narrowing a list query.
// Only truthy fields are sent: empty strings, nil pointers, zero numbers,
// false and zero dates are omitted from the request entirely.
type FilterCriteria struct {
	Brand         string         `json:"brand,omitempty" yaml:"brand,omitempty"`
	Specification string         `json:"specification,omitempty" yaml:"specification,omitempty"`
	EngineLiter   *float64       `json:"engineLiter,omitempty" yaml:"engineLiter,omitempty"`
	IsNew         *bool          `json:"isNew,omitempty" yaml:"isNew,omitempty"`
	MinPrice      *float64       `json:"minPrice,omitempty" yaml:"minPrice,omitempty"`
	MaxPrice      *float64       `json:"maxPrice,omitempty" yaml:"maxPrice,omitempty"`
	MinDate       *LocalDateTime `json:"minDate,omitempty" yaml:"minDate,omitempty"`
	MaxDate       *LocalDateTime `json:"maxDate,omitempty" yaml:"maxDate,omitempty"`
}

// Encode adds the truthy predicates to v
func (f FilterCriteria) Encode(v url.Values) {
	if f.Brand != "" {
		v.Set("brand", f.Brand)
	}
	if f.Specification != "" {
		v.Set("specification", f.Specification)
	}
	if truthyFloat(f.EngineLiter) {
		v.Set("engineLiter", formatFloat(*f.EngineLiter))
	}
	if f.IsNew != nil && *f.IsNew {
		v.Set("isNew", "true")
	}
	if truthyFloat(f.MinPrice) {
		v.Set("minPrice", formatFloat(*f.MinPrice))
	}
	if truthyFloat(f.MaxPrice) {
		v.Set("maxPrice", formatFloat(*f.MaxPrice))
	}
	if truthyDate(f.MinDate) {
		v.Set("minDate", f.MinDate.String())
	}
	if truthyDate(f.MaxDate) {
		v.Set("maxDate", f.MaxDate.String())
	}
}

// IsZero reports whether no predicate would be sent
func (f FilterCriteria) IsZero() bool {
	v := url.Values{}
	f.Encode(v)
	return len(v) == 0
}

// ActiveCount returns how many predicates would be sent
func (f FilterCriteria) ActiveCount() int {
	v := url.Values{}
	f.Encode(v)
	return len(v)
}

func truthyFloat(p *float64) bool {
	return p != nil && *p != 0
}

func truthyDate(p *LocalDateTime) bool {
	return p != nil && !p.IsZero()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Float returns a pointer to f, for building criteria and drafts
func Float(f float64) *float64 {
	return &f
}

// Bool returns a pointer to b
func Bool(b bool) *bool {
	return &b
}

// Int64 returns a pointer to i
func Int64(i int64) *int64 {
	return &i
}
