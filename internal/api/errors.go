package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotAuthenticated matches any 401 response via errors.Is; callers
// fall back to the login view instead of showing a dialog.
var ErrNotAuthenticated = errors.New("not authenticated")

// Error carries a non-success backend response. Message is the server's
// message verbatim so it can be surfaced to the user unchanged.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotAuthenticated && e.StatusCode == http.StatusUnauthorized
}
