// Package tokenstore persists the access token, refresh token and user
// profile of the current session.
package tokenstore

import "errors"

// ErrClosed is returned when a store is used after Close.
var ErrClosed = errors.New("token store closed")

// User is the profile snapshot cached for display.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Tokens is an access/refresh token pair. Both are opaque strings.
type Tokens struct {
	Access  string
	Refresh string
}

// Session is everything the store holds.
type Session struct {
	Tokens
	User User
}

// Store is a key-value store for one session. Writes are visible to the
// next Load on the same store.
type Store interface {
	// Save replaces all three entries.
	Save(tokens Tokens, user User) error

	// Load returns the stored session. ok is false when no access token is stored.
	Load() (sess Session, ok bool, err error)

	// SetAccessToken replaces only the access token.
	SetAccessToken(access string) error

	// Clear removes all three entries.
	Clear() error
}
