package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LocalDateTimeLayout is the zone-less timestamp format used by the API
const LocalDateTimeLayout = "2006-01-02T15:04:05"

// accepted input layouts, most precise first
var localDateTimeInputs = []string{
	LocalDateTimeLayout,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LocalDateTime is a wall-clock timestamp without a time zone
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime wraps t, dropping its location
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// ParseLocalDateTime accepts full timestamps as well as plain dates
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localDateTimeInputs {
		if t, err := time.Parse(layout, s); err == nil {
			return LocalDateTime{Time: t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid date/time %q (expected %s)", s, LocalDateTimeLayout)
}

// String formats the timestamp the way the API expects it
func (d LocalDateTime) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(LocalDateTimeLayout)
}

// MarshalJSON implements json.Marshaler
func (d LocalDateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
// It accepts null, empty strings and any of the supported layouts
func (d *LocalDateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid date/time value: %w", err)
	}
	if str == "" {
		d.Time = time.Time{}
		return nil
	}

	parsed, err := ParseLocalDateTime(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML renders the timestamp as a plain string
func (d LocalDateTime) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
