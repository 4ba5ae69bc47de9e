package mock

import (
	"math"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/carcli/internal/types"
)

func sevenCars() []types.Car {
	cars := make([]types.Car, 7)
	for i := range cars {
		id := int64(i + 1)
		cars[i] = types.Car{ID: &id, Brand: types.Brand{ID: 1, Name: "Toyota"}, Price: float64(1000 * (i + 1))}
	}
	return cars
}

func TestCarQueryPage_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		pageNo     int
		pageSize   int
		wantIDs    []int64
		wantPages  int
		wantIsLast bool
	}{
		{"first page", 0, 3, []int64{1, 2, 3}, 3, false},
		{"partial last page", 2, 3, []int64{7}, 3, true},
		{"past the end", 3, 3, nil, 3, true},
		{"huge page number", 3074457345618258603, 3, nil, 3, true},
		{"max page number", math.MaxInt, 2, nil, 4, true},
		{"huge page size", 0, math.MaxInt, []int64{1, 2, 3, 4, 5, 6, 7}, 1, true},
		{"huge page size and number", math.MaxInt, math.MaxInt, nil, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parseCarQuery(url.Values{
				"pageNo":   {strconv.Itoa(tt.pageNo)},
				"pageSize": {strconv.Itoa(tt.pageSize)},
			})
			require.NoError(t, err)

			var res types.PageResult
			require.NotPanics(t, func() { res = q.page(sevenCars()) })

			var ids []int64
			for _, c := range res.Content {
				ids = append(ids, c.IDValue())
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.NotNil(t, res.Content)
			assert.Equal(t, int64(7), res.TotalElements)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			assert.Equal(t, tt.wantIsLast, res.Last)
		})
	}
}

func TestCarQueryPage_Empty(t *testing.T) {
	q, err := parseCarQuery(url.Values{"pageNo": {"4"}, "pageSize": {"5"}})
	require.NoError(t, err)

	res := q.page(nil)
	assert.Empty(t, res.Content)
	assert.Equal(t, 0, res.TotalPages)
	assert.Equal(t, int64(0), res.TotalElements)
}
