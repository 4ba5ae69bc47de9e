package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/studiowebux/carcli/internal/types"
)

// ListBrands fetches every brand
func (c *Client) ListBrands(ctx context.Context) ([]types.Brand, error) {
	var brands []types.Brand
	if err := c.do(ctx, request{method: http.MethodGet, url: c.endpoint("/brand")}, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// CreateBrand adds a brand; the server assigns the id
func (c *Client) CreateBrand(ctx context.Context, brand types.Brand) (*types.Brand, error) {
	req, err := jsonRequest(http.MethodPost, c.endpoint("/brand"), brand)
	if err != nil {
		return nil, err
	}

	var created types.Brand
	if err := c.do(ctx, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateBrand renames brand id
func (c *Client) UpdateBrand(ctx context.Context, id int64, name string) (*types.Brand, error) {
	req, err := jsonRequest(http.MethodPut, c.endpoint(fmt.Sprintf("/brand/%d", id)), map[string]string{"name": name})
	if err != nil {
		return nil, err
	}

	var updated types.Brand
	if err := c.do(ctx, req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteBrand removes brand id
func (c *Client) DeleteBrand(ctx context.Context, id int64) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		url:    c.endpoint(fmt.Sprintf("/brand/%d", id)),
	}, nil)
}
