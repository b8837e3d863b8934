package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcollab/internal/config"
	"taskcollab/internal/exitcode"
	"taskcollab/internal/output"
	"taskcollab/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
// The credential is an email or a username; usernames may contain spaces.
type LoginCmd struct {
	password string
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Log in with an email or username" }
func (c *LoginCmd) Usage() string      { return "taskcollab login [--password <pw>] <email|username...>" }
func (c *LoginCmd) NeedsService() bool { return true }
func (c *LoginCmd) NeedsAuth() bool    { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	credential, err := joinWords(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if credential == "" {
		fmt.Fprintln(errOut, "error: email or username required")
		return exitcode.UserError
	}

	password, err := passwordFrom(c.password, cfg.Password, "Password: ", errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if password == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}

	user, err := svc.Login(ctx, credential, password)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprint(out, "logged in as ")
		output.FormatUser(out, user)
	}
	return exitcode.Success
}
