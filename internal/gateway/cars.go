package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/studiowebux/carcli/internal/types"
)

// PageValues encodes the query string for GET /car/byPage.
// Pagination, sort and search are always present; filters only when truthy.
func PageValues(q types.PageQuery) url.Values {
	v := url.Values{}
	v.Set("pageNo", strconv.Itoa(q.Page))
	v.Set("pageSize", strconv.Itoa(q.Size))
	v.Set("sortBy", string(q.SortBy.OrDefault()))

	dir := q.SortDir
	if dir == "" {
		dir = types.SortAsc
	}
	v.Set("sortDir", string(dir))
	v.Set("searchTerm", q.SearchTerm)

	q.Filters.Encode(v)
	return v
}

// ListPage fetches one page of cars with sorting, searching and filtering
func (c *Client) ListPage(ctx context.Context, q types.PageQuery) (*types.PageResult, error) {
	var result types.PageResult
	err := c.do(ctx, request{
		method: http.MethodGet,
		url:    c.endpoint("/car/byPage"),
		query:  PageValues(q),
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Content == nil {
		result.Content = []types.Car{}
	}
	return &result, nil
}

// ListAll fetches every car without pagination, filtering or sorting
func (c *Client) ListAll(ctx context.Context) ([]types.Car, error) {
	var cars []types.Car
	if err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint("/car")}, &cars); err != nil {
		return nil, err
	}
	return cars, nil
}

// CreateCar submits a new car with an optional image and returns the stored record
func (c *Client) CreateCar(ctx context.Context, draft types.CarDraft, upload *Upload) (*types.Car, error) {
	body, contentType, err := encodeCarForm(draft, upload)
	if err != nil {
		return nil, err
	}

	var car types.Car
	err = c.do(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoint("/car"),
		body:        body,
		contentType: contentType,
	}, &car)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// UpdateCar submits (possibly partial) changes for car id with an optional new image
func (c *Client) UpdateCar(ctx context.Context, id int64, draft types.CarDraft, upload *Upload) (*types.Car, error) {
	body, contentType, err := encodeCarForm(draft, upload)
	if err != nil {
		return nil, err
	}

	var car types.Car
	err = c.do(ctx, request{
		method:      http.MethodPut,
		url:         c.endpoint(fmt.Sprintf("/car/%d", id)),
		body:        body,
		contentType: contentType,
	}, &car)
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// DeleteCar removes car id
func (c *Client) DeleteCar(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		url:    c.endpoint(fmt.Sprintf("/car/%d", id)),
	}, nil)
}
