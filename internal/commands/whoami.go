package commands

import (
	"context"
	"flag"
	"io"

	"taskcollab/internal/config"
	"taskcollab/internal/exitcode"
	"taskcollab/internal/output"
	"taskcollab/internal/service"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return nil }
func (c *WhoamiCmd) Synopsis() string   { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string      { return "taskcollab whoami" }
func (c *WhoamiCmd) NeedsService() bool { return true }
func (c *WhoamiCmd) NeedsAuth() bool    { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user, err := svc.CurrentUser(ctx)
	if err != nil {
		return reportError(errOut, err)
	}
	output.FormatUser(out, user)
	return exitcode.Success
}
