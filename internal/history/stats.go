package history

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/studiowebux/carcli/internal/types"
)

// NormalizeRoute replaces numeric path segments with {id} and drops the
// query string
func NormalizeRoute(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// Stats aggregates the history per method and normalized route, most
// recently called first
func (m *Manager) Stats() ([]types.RouteStats, error) {
	rows, err := m.db.Query(`
		SELECT
			method,
			path,
			status,
			COUNT(*) AS calls,
			SUM(duration_ms) AS total_duration,
			MIN(duration_ms) AS min_duration,
			MAX(duration_ms) AS max_duration,
			MAX(timestamp) AS last_called
		FROM history
		GROUP BY method, path, status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get history stats: %w", err)
	}
	defer rows.Close()

	type key struct{ method, route string }
	byRoute := make(map[key]*types.RouteStats)
	totals := make(map[key]int64)

	for rows.Next() {
		var (
			method, path, last string
			status, calls      int
			total, minD, maxD  int64
		)
		if err := rows.Scan(&method, &path, &status, &calls, &total, &minD, &maxD, &last); err != nil {
			return nil, fmt.Errorf("failed to scan history stats: %w", err)
		}

		k := key{method, NormalizeRoute(path)}
		s, ok := byRoute[k]
		if !ok {
			s = &types.RouteStats{
				Method:        k.method,
				Route:         k.route,
				MinDurationMs: minD,
				StatusCodes:   make(map[int]int),
			}
			byRoute[k] = s
		}

		s.TotalCalls += calls
		s.StatusCodes[status] += calls
		switch {
		case status == 0:
			s.NetworkErrors += calls
		case status >= 200 && status < 300:
			s.SuccessCount += calls
		case status >= 400:
			s.ErrorCount += calls
		}
		s.MinDurationMs = min(s.MinDurationMs, minD)
		s.MaxDurationMs = max(s.MaxDurationMs, maxD)
		totals[k] += total

		if ts := parseTimestamp(last); ts.After(s.LastCalled) {
			s.LastCalled = ts
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats := make([]types.RouteStats, 0, len(byRoute))
	for k, s := range byRoute {
		s.AvgDurationMs = float64(totals[k]) / float64(s.TotalCalls)
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].LastCalled.Equal(stats[j].LastCalled) {
			return stats[i].LastCalled.After(stats[j].LastCalled)
		}
		if stats[i].Route != stats[j].Route {
			return stats[i].Route < stats[j].Route
		}
		return stats[i].Method < stats[j].Method
	})
	return stats, nil
}

// parseTimestamp reads a stored UTC timestamp; go-sqlite3 may hand DATETIME
// columns back as RFC3339
func parseTimestamp(s string) time.Time {
	parsed, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}
		}
	}
	return parsed.Local()
}
