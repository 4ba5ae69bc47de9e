package gateway

import (
	"errors"
	"fmt"
)

// maxErrorBody is the number of body runes kept in StatusError messages
const maxErrorBody = 200

// StatusError is returned for any non-2xx response.
// Callers treat it as an opaque failure; the status is kept for logs.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
	}
	body := e.Body
	if runes := []rune(body); len(runes) > maxErrorBody {
		body = string(runes[:maxErrorBody-3]) + "..."
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Status, body)
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// IsClientErrorStatus returns true if status code is 4xx
func IsClientErrorStatus(status int) bool {
	return status >= 400 && status < 500
}

// IsServerErrorStatus returns true if status code is 5xx
func IsServerErrorStatus(status int) bool {
	return status >= 500 && status < 600
}
