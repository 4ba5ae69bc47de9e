package mock

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/studiowebux/carcli/internal/types"
)

const defaultPageSize = 10

// carQuery is a parsed /car/byPage request
type carQuery struct {
	pageNo     int
	pageSize   int
	sortBy     types.SortKey
	sortDir    types.SortDirection
	searchTerm string
	brand      string
	spec       string
	engine     *float64
	isNew      *bool
	minPrice   *float64
	maxPrice   *float64
	minDate    *types.LocalDateTime
	maxDate    *types.LocalDateTime
}

func parseCarQuery(v url.Values) (carQuery, error) {
	q := carQuery{pageSize: defaultPageSize, sortBy: types.SortID, sortDir: types.SortAsc}
	var err error

	if s := v.Get("pageNo"); s != "" {
		if q.pageNo, err = strconv.Atoi(s); err != nil || q.pageNo < 0 {
			return q, fmt.Errorf("invalid pageNo %q", s)
		}
	}
	if s := v.Get("pageSize"); s != "" {
		if q.pageSize, err = strconv.Atoi(s); err != nil || q.pageSize <= 0 {
			return q, fmt.Errorf("invalid pageSize %q", s)
		}
	}
	if s := v.Get("sortBy"); s != "" {
		key, ok := types.ParseSortKey(s)
		if !ok {
			return q, fmt.Errorf("invalid sortBy %q", s)
		}
		q.sortBy = key.OrDefault()
	}
	switch strings.ToLower(v.Get("sortDir")) {
	case "", "asc":
	case "desc":
		q.sortDir = types.SortDesc
	default:
		return q, fmt.Errorf("invalid sortDir %q", v.Get("sortDir"))
	}

	q.searchTerm = v.Get("searchTerm")
	q.brand = v.Get("brand")
	q.spec = v.Get("specification")

	if q.engine, err = optFloat(v, "engineLiter"); err != nil {
		return q, err
	}
	if q.minPrice, err = optFloat(v, "minPrice"); err != nil {
		return q, err
	}
	if q.maxPrice, err = optFloat(v, "maxPrice"); err != nil {
		return q, err
	}
	if s := v.Get("isNew"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("invalid isNew %q", s)
		}
		q.isNew = &b
	}
	if q.minDate, err = optDate(v, "minDate"); err != nil {
		return q, err
	}
	if q.maxDate, err = optDate(v, "maxDate"); err != nil {
		return q, err
	}
	return q, nil
}

func optFloat(v url.Values, key string) (*float64, error) {
	s := v.Get(key)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, s)
	}
	return &f, nil
}

func optDate(v url.Values, key string) (*types.LocalDateTime, error) {
	s := v.Get(key)
	if s == "" {
		return nil, nil
	}
	d, err := types.ParseLocalDateTime(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &d, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (q carQuery) matches(c types.Car) bool {
	if q.brand != "" && !strings.EqualFold(c.Brand.Name, q.brand) {
		return false
	}
	if q.spec != "" && !containsFold(c.Specification, q.spec) {
		return false
	}
	if q.engine != nil && c.EngineLiter != *q.engine {
		return false
	}
	if q.isNew != nil && c.IsNew != *q.isNew {
		return false
	}
	if q.minPrice != nil && c.Price < *q.minPrice {
		return false
	}
	if q.maxPrice != nil && c.Price > *q.maxPrice {
		return false
	}
	if q.minDate != nil && c.ReleaseDateTime.Before(q.minDate.Time) {
		return false
	}
	if q.maxDate != nil && c.ReleaseDateTime.After(q.maxDate.Time) {
		return false
	}
	if q.searchTerm != "" && !containsFold(c.Specification, q.searchTerm) && !containsFold(c.Brand.Name, q.searchTerm) {
		return false
	}
	return true
}

func compareCars(key types.SortKey, a, b types.Car) int {
	switch key {
	case types.SortBrand:
		return cmp.Compare(a.Brand.Name, b.Brand.Name)
	case types.SortSpecification:
		return cmp.Compare(a.Specification, b.Specification)
	case types.SortEngineLiter:
		return cmp.Compare(a.EngineLiter, b.EngineLiter)
	case types.SortIsNew:
		// false sorts before true, as a database would
		switch {
		case a.IsNew == b.IsNew:
			return 0
		case a.IsNew:
			return 1
		default:
			return -1
		}
	case types.SortPrice:
		return cmp.Compare(a.Price, b.Price)
	case types.SortReleaseDateTime:
		return a.ReleaseDateTime.Compare(b.ReleaseDateTime.Time)
	}
	return cmp.Compare(a.IDValue(), b.IDValue())
}

// page filters, sorts and slices cars into one page
func (q carQuery) page(cars []types.Car) types.PageResult {
	matched := make([]types.Car, 0, len(cars))
	for _, c := range cars {
		if q.matches(c) {
			matched = append(matched, c)
		}
	}

	slices.SortStableFunc(matched, func(a, b types.Car) int {
		r := compareCars(q.sortBy, a, b)
		if r == 0 {
			r = cmp.Compare(a.IDValue(), b.IDValue())
		}
		if q.sortDir == types.SortDesc {
			return -r
		}
		return r
	})

	total := len(matched)
	totalPages := 0
	if total > 0 {
		totalPages = (total-1)/q.pageSize + 1
	}
	// pageNo and pageSize come straight from the query string; compare
	// before multiplying so huge values cannot overflow
	start := total
	if q.pageNo < totalPages {
		start = q.pageNo * q.pageSize
	}
	end := start + min(q.pageSize, total-start)

	content := matched[start:end]
	if content == nil {
		content = []types.Car{}
	}
	return types.PageResult{
		Content:       content,
		PageNo:        q.pageNo,
		PageSize:      q.pageSize,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		Last:          q.pageNo >= totalPages-1,
	}
}
