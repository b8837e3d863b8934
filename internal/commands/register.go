package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskcollab/internal/config"
	"taskcollab/internal/exitcode"
	"taskcollab/internal/service"
	"taskcollab/internal/task"
)

// MinPasswordLength is the shortest password register accepts.
const MinPasswordLength = 8

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	name     string
	password string
	confirm  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskcollab register --email <email> --name <name> [--password <pw> --confirm <pw>]"
}
func (c *RegisterCmd) NeedsService() bool { return true }
func (c *RegisterCmd) NeedsAuth() bool    { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.confirm, "confirm", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	email := strings.TrimSpace(c.email)
	name := strings.TrimSpace(c.name)
	switch {
	case email == "":
		fmt.Fprintln(errOut, "error: --email required")
		return exitcode.UserError
	case !task.IsEmail(email):
		fmt.Fprintf(errOut, "error: invalid email: %s\n", email)
		return exitcode.UserError
	case name == "":
		fmt.Fprintln(errOut, "error: --name required")
		return exitcode.UserError
	}

	password, err := passwordFrom(c.password, "", "Password: ", errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	// A password given on the command line counts as confirmed unless
	// --confirm says otherwise.
	confirm := c.confirm
	if confirm == "" {
		if c.password != "" {
			confirm = c.password
		} else if confirm, err = readPassword("Confirm password: ", errOut); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	if password != confirm {
		fmt.Fprintln(errOut, "error: passwords do not match")
		return exitcode.UserError
	}
	if len(password) < MinPasswordLength {
		fmt.Fprintf(errOut, "error: password must be at least %d characters\n", MinPasswordLength)
		return exitcode.UserError
	}

	if err := svc.Register(ctx, email, password, name); err != nil {
		var remote *service.RemoteError
		if errors.As(err, &remote) && len(remote.Fields) > 0 {
			fmt.Fprintf(errOut, "error: %s\n", remote.Summary())
			if remote.Status >= 500 {
				return exitcode.BackendError
			}
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "account created %s\n", loginHint)
	}
	return exitcode.Success
}
