package session

import (
	"github.com/golang-jwt/jwt/v4"

	"taskcollab/internal/task"
	"taskcollab/internal/tokenstore"
)

// serverUser is the user object returned next to the login tokens.
type serverUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// decodeClaims reads the claims of an access token without verifying its
// signature; the token is only used to display who is logged in.
func decodeClaims(access string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(access, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

// snapshotUser prefers the username claim of the access token over the
// server's user object. Underscores are shown as spaces.
func snapshotUser(access string, server serverUser) tokenstore.User {
	username, email := server.Username, server.Email
	if claims, ok := decodeClaims(access); ok {
		if u := claimString(claims, "username"); u != "" {
			username = u
		}
		if email == "" {
			email = claimString(claims, "email")
		}
	}
	return tokenstore.User{
		Username: task.DisplayUsername(username),
		Email:    email,
	}
}
