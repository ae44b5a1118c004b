package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

// APIError is a non-2xx response from the REST API
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    errorMessage(body),
		Body:       body,
	}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets callers match common statuses against the shared sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case apperrors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// SessionExpiredError is returned when a 401 could not be recovered by a
// refresh. The credential has already been cleared and a SessionExpired
// event emitted by the time the caller sees it.
type SessionExpiredError struct {
	// Original is the response that triggered the refresh. It is nil when
	// the refresh was requested directly.
	Original *APIError
	// Cause is why the refresh failed
	Cause error
}

func (e *SessionExpiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", apperrors.ErrSessionExpired, e.Cause)
	}
	return apperrors.ErrSessionExpired.Error()
}

func (e *SessionExpiredError) Unwrap() []error {
	errs := []error{apperrors.ErrSessionExpired}
	if e.Original != nil {
		errs = append(errs, e.Original)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// errorMessage pulls a human readable message out of an error body. The API
// returns either a string or a list of validation messages.
func errorMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	var message string
	if err := json.Unmarshal(payload.Message, &message); err == nil && message != "" {
		return message
	}
	var messages []string
	if err := json.Unmarshal(payload.Message, &messages); err == nil && len(messages) > 0 {
		return strings.Join(messages, "; ")
	}
	return payload.Error
}
