package commands

import "io"

// SetPasswordReader replaces the password prompt and returns a restore func.
func SetPasswordReader(fn func(prompt string, errOut io.Writer) (string, error)) (restore func()) {
	prev := readPassword
	readPassword = fn
	return func() { readPassword = prev }
}
