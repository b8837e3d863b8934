package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskcollab/internal/config"
	"taskcollab/internal/exitcode"
	"taskcollab/internal/service"
	"taskcollab/internal/task"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "taskcollab done <id>" }
func (c *DoneCmd) NeedsService() bool { return true }
func (c *DoneCmd) NeedsAuth() bool    { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	return updateTask(ctx, cfg, svc, id, out, errOut, func(p *task.Payload) {
		p.Status = task.StatusCompleted
	})
}
