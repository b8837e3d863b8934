package service

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrNotLoggedIn is returned when an operation needs a session and none is stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired is returned when the session could not be refreshed.
	ErrSessionExpired = errors.New("session expired")

	// ErrUnavailable is returned when the API could not be reached.
	ErrUnavailable = errors.New("api unavailable")
)

// AuthError is a rejected login. Message is the first reason given by the API.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// FieldError is one reason the API gave for rejecting a request.
type FieldError struct {
	Field   string
	Message string
}

// RemoteError is a request the API rejected.
type RemoteError struct {
	Status int
	Title  string
	Fields []FieldError
}

func (e *RemoteError) Error() string {
	if len(e.Fields) > 0 {
		return e.Fields[0].Message
	}
	return e.Title
}

// Summary joins every field error as "field: message".
func (e *RemoteError) Summary() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, ", ")
}
