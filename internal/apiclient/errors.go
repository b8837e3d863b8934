package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// GeneralField tags errors that are not tied to a specific field.
	GeneralField = "general"

	defaultTitle   = "Error"
	defaultMessage = "unexpected error"
)

// ErrSessionInvalid means a 401 could not be recovered by refreshing the
// access token. The session has been cleared.
var ErrSessionInvalid = errors.New("session expired")

// FieldError is one entry of a normalized error payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the uniform error shape for every non-2xx response.
type Error struct {
	StatusCode int          `json:"-"`
	Title      string       `json:"title"`
	Errors     []FieldError `json:"errors"`
}

func (e *Error) Error() string {
	if f := e.First(); f.Message != "" {
		return f.Message
	}
	if e.Title != "" {
		return e.Title
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// First returns the first field error, or a zero value.
func (e *Error) First() FieldError {
	if e == nil || len(e.Errors) == 0 {
		return FieldError{}
	}
	return e.Errors[0]
}

// Summary joins all errors as "field: message" pairs.
func (e *Error) Summary() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, ", ")
}

// NetworkError means no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an *Error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Normalize converts an error response body to *Error. A body that already
// carries a field error list is kept as is; anything else becomes a single
// general error.
func Normalize(status int, body []byte) *Error {
	var payload struct {
		Title  string          `json:"title"`
		Errors json.RawMessage `json:"errors"`
		Detail string          `json:"detail"`
	}
	_ = json.Unmarshal(body, &payload)

	var fieldErrors []FieldError
	if len(payload.Errors) > 0 && json.Unmarshal(payload.Errors, &fieldErrors) == nil && len(fieldErrors) > 0 {
		title := payload.Title
		if title == "" {
			title = defaultTitle
		}
		return &Error{StatusCode: status, Title: title, Errors: fieldErrors}
	}

	msg := payload.Detail
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = defaultMessage
	}
	return &Error{
		StatusCode: status,
		Title:      defaultTitle,
		Errors:     []FieldError{{Field: GeneralField, Message: msg}},
	}
}
