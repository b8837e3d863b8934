package service

// User is the logged-in user as shown to people: underscores in the
// username are displayed as spaces.
type User struct {
	Username string
	Email    string
}
