package session

import "errors"

var (
	// ErrNotLoggedIn is returned when no session is stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoRefreshToken is returned by Refresh when the store holds no refresh token.
	ErrNoRefreshToken = errors.New("no refresh token available")
)

// AuthError is a rejected login or refresh. Message is what the user sees.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "authentication failed"
}

func (e *AuthError) Unwrap() error { return e.Err }
