package viewstate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/studiowebux/carcli/internal/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// sorter orders cars by one key. Not safe for concurrent use (the collator
// keeps internal buffers); the controller only calls it under its lock.
type sorter struct {
	collator *collate.Collator
}

func newSorter() *sorter {
	return &sorter{collator: collate.New(language.English)}
}

// compare returns the ascending order of a and b for key.
// Missing values compare equal.
func (s *sorter) compare(key types.SortKey, a, b types.Car) int {
	switch key {
	case types.SortBrand:
		return s.collator.CompareString(a.Brand.Name, b.Brand.Name)
	case types.SortSpecification:
		return s.collator.CompareString(a.Specification, b.Specification)
	case types.SortID:
		if a.ID == nil || b.ID == nil {
			return 0
		}
		return cmp.Compare(*a.ID, *b.ID)
	case types.SortEngineLiter:
		return cmp.Compare(a.EngineLiter, b.EngineLiter)
	case types.SortPrice:
		return cmp.Compare(a.Price, b.Price)
	case types.SortReleaseDateTime:
		if a.ReleaseDateTime.IsZero() || b.ReleaseDateTime.IsZero() {
			return 0
		}
		return a.ReleaseDateTime.Compare(b.ReleaseDateTime.Time)
	case types.SortIsNew:
		// new cars first when ascending
		switch {
		case a.IsNew == b.IsNew:
			return 0
		case a.IsNew:
			return -1
		default:
			return 1
		}
	}
	return 0
}

// sort orders cars in place; SortNone leaves the order untouched
func (s *sorter) sort(cars []types.Car, key types.SortKey, dir types.SortDirection) {
	if key == types.SortNone {
		return
	}
	slices.SortStableFunc(cars, func(a, b types.Car) int {
		c := s.compare(key, a, b)
		if dir == types.SortDesc {
			return -c
		}
		return c
	})
}

// matchesTerm reports whether the brand name or specification contains term,
// ignoring case
func matchesTerm(c types.Car, term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(c.Brand.Name), term) ||
		strings.Contains(strings.ToLower(c.Specification), term)
}
