package sse

import "fmt"

// StatusError is returned by Open when the server answers with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sse: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("sse: HTTP %d: %s", e.StatusCode, e.Body)
}
