package cli

import (
	"errors"
	"fmt"
)

// ErrHistoryDisabled is returned when history.enabled is false or the database could not be opened
var ErrHistoryDisabled = errors.New("request history is disabled")

// ShowHistory prints the most recent API calls, or clears them
func (a *App) ShowHistory(limit int, clear bool, out OutputOptions) error {
	if a.History == nil {
		return ErrHistoryDisabled
	}

	if clear {
		if err := a.History.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(a.Out, "History cleared")
		return nil
	}

	entries, err := a.History.Recent(limit)
	if err != nil {
		return err
	}
	return writeOutput(a.Out, entries, out, func() string { return renderHistory(entries) })
}

// ShowStats prints call counts and latencies per API route
func (a *App) ShowStats(out OutputOptions) error {
	if a.History == nil {
		return ErrHistoryDisabled
	}

	stats, err := a.History.Stats()
	if err != nil {
		return err
	}
	count, err := a.History.Count()
	if err != nil {
		return err
	}
	return writeOutput(a.Out, stats, out, func() string {
		return fmt.Sprintf("%s\n%d calls recorded", renderStats(stats), count)
	})
}
