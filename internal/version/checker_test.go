package version

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		current string
		want    bool
	}{
		{"same version", "0.1.0", "0.1.0", false},
		{"patch upgrade", "0.1.1", "0.1.0", true},
		{"minor upgrade", "0.2.0", "0.1.9", true},
		{"major downgrade", "0.9.0", "1.0.0", false},
		{"multi-digit", "0.0.100", "0.0.99", true},
		{"different lengths", "1.0", "0.9.28", true},
		{"shorter current", "0.1.0", "0.1", false},
		{"pre-release same base", "0.1.0-rc1", "0.1.0", false},
		{"build metadata", "0.1.1+abc", "0.1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNewer(tt.latest, tt.current))
		})
	}
}

func newChecker(t *testing.T, status int, body string) *Checker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "carcli/0.1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewChecker()
	c.URL = srv.URL
	return c
}

func TestCheck(t *testing.T) {
	c := newChecker(t, http.StatusOK, `{"tag_name":"v0.2.0","name":"0.2.0","html_url":"https://example.com/r/0.2.0"}`)

	release, newer, err := c.Check(t.Context(), "0.1.0")
	require.NoError(t, err)
	assert.True(t, newer)
	assert.Equal(t, "0.2.0", release.Version())
	assert.Equal(t, "https://example.com/r/0.2.0", release.HTMLURL)
}

func TestCheck_UpToDate(t *testing.T) {
	c := newChecker(t, http.StatusOK, `{"tag_name":"v0.1.0"}`)

	_, newer, err := c.Check(t.Context(), "v0.1.0")
	require.NoError(t, err)
	assert.False(t, newer)
}

func TestCheck_BadStatus(t *testing.T) {
	c := newChecker(t, http.StatusNotFound, `{}`)

	_, _, err := c.Check(t.Context(), "0.1.0")
	assert.ErrorContains(t, err, "unexpected status code: 404")
}
