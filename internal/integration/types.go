package integration

import (
	"fmt"
	"strings"
)

// APIError is a non 2xx answer of the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.Status, strings.TrimSpace(e.Body))
}
