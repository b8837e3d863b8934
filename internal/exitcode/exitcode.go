// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError covers bad arguments, failed validation, unknown tasks and
	// requests the API rejected.
	UserError = 1

	// AuthError covers missing sessions, expired sessions and bad credentials.
	AuthError = 2

	// BackendError indicates an unreachable API or a server-side failure.
	BackendError = 3
)
