package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/studiowebux/carcli/internal/session"
	"github.com/studiowebux/carcli/internal/types"
	"go.uber.org/zap"
)

// Login exchanges credentials for a token and stores it in the session.
// Any failure prints "Invalid credentials" and returns ErrInvalidCredentials.
func (a *App) Login(ctx context.Context, username, password string) error {
	if err := a.Authenticate(ctx, username, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			fmt.Fprintln(a.Err, InvalidCredentialsMessage)
		}
		return err
	}
	fmt.Fprintf(a.Out, "Logged in as %s\n", a.Session.Username())
	return nil
}

// Authenticate is Login without any terminal output. The gateway error is
// only logged; callers see ErrInvalidCredentials.
func (a *App) Authenticate(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)

	token, err := a.Gateway.Login(ctx, types.Credentials{Username: username, Password: password})
	if err != nil {
		a.Logger.Error("login failed", zap.String("username", username), zap.Error(err))
		return ErrInvalidCredentials
	}

	if err := a.Session.Issue(token, username, a.Gateway.BaseURL()); err != nil {
		return err
	}

	a.Logger.Info("logged in", zap.String("username", username))
	return nil
}

// Logout drops the stored token
func (a *App) Logout() error {
	if err := a.Session.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Logged out")
	return nil
}

// WhoAmI prints the current session
func (a *App) WhoAmI() error {
	if !a.Session.IsAuthenticated() {
		return session.ErrNotAuthenticated
	}

	s := a.Session.GetSession()
	fmt.Fprintf(a.Out, "User:      %s\n", a.Session.Subject())
	fmt.Fprintf(a.Out, "API:       %s\n", s.BaseURL)
	if !s.IssuedAt.IsZero() {
		fmt.Fprintf(a.Out, "Logged in: %s\n", s.IssuedAt.Format(time.RFC3339))
	}
	if claims, err := a.Session.Claims(); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			fmt.Fprintf(a.Out, "Expires:   %s\n", exp.Format(time.RFC3339))
		}
	}
	return nil
}
