package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestManager_LoadMissingFileIsLoggedOut(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "missing.json"))
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected logged-out session")
	}
	if _, err := m.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Token() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestManager_IssuePersistsAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".session.json")
	m := NewManagerAt(path)

	if err := m.Issue("abc.def.ghi", "admin", "http://localhost:10150"); err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	// A second manager sees the persisted token
	other := NewManagerAt(path)
	if err := other.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	token, err := other.Token()
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("Token() = %q, %v", token, err)
	}
	if other.Username() != "admin" {
		t.Errorf("Username() = %q", other.Username())
	}

	if err := other.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if m.IsAuthenticated() {
		t.Error("expected token to be cleared on disk")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("session file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestManager_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := NewManagerAt(path).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestManager_ClaimsAndSubject(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), ".session.json"))
	if err := m.Issue(signedToken(t, "alice"), "typed-name", ""); err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	claims, err := m.Claims()
	if err != nil {
		t.Fatalf("Claims() error: %v", err)
	}
	if sub, _ := claims.GetSubject(); sub != "alice" {
		t.Errorf("subject = %q", sub)
	}
	if m.Subject() != "alice" {
		t.Errorf("Subject() = %q", m.Subject())
	}
}

func TestManager_SubjectFallsBackToUsername(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), ".session.json"))
	if err := m.Issue("opaque-token", "bob", ""); err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := m.Claims(); err == nil {
		t.Error("expected decode error for opaque token")
	}
	if m.Subject() != "bob" {
		t.Errorf("Subject() = %q, want bob", m.Subject())
	}
}
