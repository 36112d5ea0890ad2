package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// ErrMissingToken is returned before any request is made when no token is set.
	// It matches ErrUnauthorized.
	ErrMissingToken = fmt.Errorf("missing access token: %w", ErrUnauthorized)
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// APIError is returned for every non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string // Server-provided message, empty when none was sent
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is match status-class sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Temporary reports whether the failure is a server-side error worth retrying.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500
}

// IsUnauthorized reports whether err means the caller must log in again.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// UserMessage returns the server-provided message from err when there is one,
// otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func newAPIError(method, path string, resp *http.Response) *APIError {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return e
	}
	e.Message = extractMessage(data)
	return e
}

// extractMessage pulls a human-readable message out of an error body. It
// understands {"detail": "..."}, {"message": "..."} and {"error": "..."}, and
// falls back to short plain-text bodies.
func extractMessage(data []byte) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		text := strings.TrimSpace(string(data))
		if len(text) > 200 || strings.HasPrefix(text, "<") {
			return ""
		}
		return text
	}
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
