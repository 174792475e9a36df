package cms

import (
	"encoding/json"
	"fmt"
	"net/http"

	"bistro/internal/domain"
)

// APIError is the CMS error envelope: {"error":{"status","name","message"}}.
type APIError struct {
	StatusCode int    `json:"status"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cms: http %d", e.StatusCode)
	}
	return fmt.Sprintf("cms: http %d %s: %s", e.StatusCode, e.Name, e.Message)
}

// Unwrap maps the status code onto a domain sentinel.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return domain.ErrBadRequest
	case e.StatusCode == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return domain.ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode >= 500:
		return domain.ErrUnavailable
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	var env struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		env.Error.StatusCode = status
		return env.Error
	}
	return &APIError{StatusCode: status, Name: http.StatusText(status)}
}
