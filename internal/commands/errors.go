package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"taskcollab/internal/exitcode"
	"taskcollab/internal/service"
	"taskcollab/internal/task"
)

// loginHint is appended to messages that require logging in again.
const loginHint = "(run: taskcollab login)"

// reportError prints err to errOut and returns its exit code.
// Field error lists show their first message only.
func reportError(errOut io.Writer, err error) int {
	var (
		validationErr *task.ValidationError
		authErr       *service.AuthError
		remoteErr     *service.RemoteError
	)

	switch {
	case errors.As(err, &validationErr):
		fmt.Fprintf(errOut, "error: %s\n", validationErr.Message)
		return exitcode.UserError

	case errors.Is(err, service.ErrNotLoggedIn):
		fmt.Fprintf(errOut, "error: not logged in %s\n", loginHint)
		return exitcode.AuthError

	case errors.Is(err, service.ErrSessionExpired):
		fmt.Fprintf(errOut, "error: session expired %s\n", loginHint)
		return exitcode.AuthError

	case errors.As(err, &authErr):
		fmt.Fprintf(errOut, "error: %s\n", authErr.Message)
		return exitcode.AuthError

	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError

	case errors.As(err, &remoteErr):
		fmt.Fprintf(errOut, "error: %s\n", remoteErr.Error())
		if remoteErr.Status >= http.StatusInternalServerError {
			return exitcode.BackendError
		}
		return exitcode.UserError

	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
