package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/studiowebux/carcli/internal/config"
	"github.com/studiowebux/carcli/internal/types"
)

// ErrNotAuthenticated is returned when a token is required but none is stored
var ErrNotAuthenticated = errors.New("not logged in")

// Manager holds the bearer token obtained at login.
// The token is issued by Issue and dropped by Clear; there is no expiry or refresh logic.
type Manager struct {
	mu      sync.RWMutex
	path    string
	session *types.Session
}

// NewManager creates a session manager backed by the configured session file
func NewManager() *Manager {
	return NewManagerAt(config.GetSessionFilePath())
}

// NewManagerAt creates a session manager backed by path
func NewManagerAt(path string) *Manager {
	return &Manager{
		path:    path,
		session: &types.Session{},
	}
}

// Load loads the session file
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		// If file doesn't exist, start logged out
		m.session = &types.Session{}
		return nil
	}

	var session types.Session
	if len(data) > 0 {
		if err := json.Unmarshal(data, &session); err != nil {
			return fmt.Errorf("failed to parse session file: %w", err)
		}
	}

	m.session = &session
	return nil
}

// save writes the session to disk; callers hold the lock
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Issue stores a freshly obtained token and persists it
func (m *Manager) Issue(token, username, baseURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = &types.Session{
		Token:    token,
		Username: username,
		IssuedAt: time.Now(),
		BaseURL:  baseURL,
	}
	return m.save()
}

// Clear drops the token (logout) and persists the empty session
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = &types.Session{}
	return m.save()
}

// Token returns the stored bearer token, or ErrNotAuthenticated
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session.Token == "" {
		return "", ErrNotAuthenticated
	}
	return m.session.Token, nil
}

// IsAuthenticated reports whether a token is stored
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token != ""
}

// Username returns the user the token was issued to
func (m *Manager) Username() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Username
}

// GetSession returns a copy of the current session
func (m *Manager) GetSession() types.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.session
}

// Claims decodes the stored JWT without verifying its signature.
// The client never holds the signing key; this is for display only.
func (m *Manager) Claims() (jwt.MapClaims, error) {
	token, err := m.Token()
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return claims, nil
}

// Subject returns the token subject, falling back to the stored username
func (m *Manager) Subject() string {
	claims, err := m.Claims()
	if err == nil {
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			return sub
		}
	}
	return m.Username()
}
