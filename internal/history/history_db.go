package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/carcli/internal/config"
	"github.com/studiowebux/carcli/internal/gateway"
	"github.com/studiowebux/carcli/internal/migrations"
	"github.com/studiowebux/carcli/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// DefaultLimit is the number of entries Recent returns when limit <= 0
const DefaultLimit = 50

// Manager persists one row per API call in SQLite
type Manager struct {
	db       *sql.DB
	username func() string
	now      func() time.Time
}

// NewManager opens (or creates) the history database at dbPath.
// username, when non-nil, is asked for the current user on every Record.
func NewManager(dbPath string, username func() string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if username == nil {
		username = func() string { return "" }
	}
	return &Manager{db: db, username: username, now: time.Now}, nil
}

// Record stores a finished gateway call
func (m *Manager) Record(call gateway.Call) error {
	var errMsg sql.NullString
	if call.Err != nil {
		errMsg = sql.NullString{String: call.Err.Error(), Valid: true}
	}

	_, err := m.db.Exec(`
		INSERT INTO history (timestamp, method, path, status, duration_ms, error, username)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		m.now().UTC().Format(timestampLayout),
		call.Method,
		call.Path,
		call.Status,
		call.Duration.Milliseconds(),
		errMsg,
		m.username(),
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (m *Manager) Recent(limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := m.db.Query(`
		SELECT id, timestamp, method, path, status, duration_ms, error, COALESCE(username, '')
		FROM history
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var (
			entry     types.HistoryEntry
			timestamp string
			errorMsg  sql.NullString
		)
		err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.Method,
			&entry.Path,
			&entry.Status,
			&entry.Duration,
			&errorMsg,
			&entry.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Timestamp = parseTimestamp(timestamp)
		entry.Error = errorMsg.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Count returns the number of stored entries
func (m *Manager) Count() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

// Clear deletes every entry
func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
