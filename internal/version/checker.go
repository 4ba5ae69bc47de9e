// Package version asks the release feed whether a newer carcli build exists.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ReleasesURL is the latest-release endpoint of the carcli repository
const ReleasesURL = "https://api.github.com/repos/studiowebux/carcli/releases/latest"

const checkTimeout = 5 * time.Second

// Release is the subset of the release payload carcli reads
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Version is the tag without its leading "v"
func (r Release) Version() string {
	return strings.TrimPrefix(r.TagName, "v")
}

// Checker fetches the latest release
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a Checker pointed at ReleasesURL
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Check reports the latest release and whether it is newer than current
func (c *Checker) Check(ctx context.Context, current string) (Release, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Release{}, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "carcli/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return Release{}, false, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Release{}, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Release{}, false, fmt.Errorf("failed to decode release: %w", err)
	}

	latest := release.Version()
	return release, latest != "" && IsNewer(latest, strings.TrimPrefix(current, "v")), nil
}

// IsNewer reports whether latest > current, comparing dotted numeric parts.
// Pre-release and build suffixes are ignored.
func IsNewer(latest, current string) bool {
	l, c := parse(latest), parse(current)
	for i := 0; i < max(len(l), len(c)); i++ {
		lp, cp := part(l, i), part(c, i)
		if lp != cp {
			return lp > cp
		}
	}
	return false
}

func part(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

func parse(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}

	var out []int
	for _, p := range strings.Split(v, ".") {
		if n, err := strconv.Atoi(p); err == nil {
			out = append(out, n)
		}
	}
	return out
}
