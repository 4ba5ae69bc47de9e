package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/studiowebux/carcli/internal/types"
)

// ErrEmptyToken is returned when the login endpoint answers without a token
var ErrEmptyToken = errors.New("login response did not contain a token")

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds types.Credentials) (string, error) {
	req, err := jsonRequest(http.MethodPost, c.loginURL, creds)
	if err != nil {
		return "", err
	}

	var resp types.TokenResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrEmptyToken
	}
	return resp.Token, nil
}
