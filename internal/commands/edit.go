package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskcollab/internal/config"
	"taskcollab/internal/exitcode"
	"taskcollab/internal/service"
	"taskcollab/internal/task"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Only the given fields change; the
// rest are sent back as fetched.
type EditCmd struct {
	title       optionalString
	description optionalString
	deadline    optionalString
	priority    optionalString
	status      optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "taskcollab edit [--title <t>] [--description <d>] [--deadline <YYYY-MM-DD>] [--priority <p>] [--status <s>] <id>"
}
func (c *EditCmd) NeedsService() bool { return true }
func (c *EditCmd) NeedsAuth() bool    { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.deadline, "deadline", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !c.title.set && !c.description.set && !c.deadline.set && !c.priority.set && !c.status.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	var priority task.Priority
	if c.priority.set {
		if priority, err = task.ParsePriority(c.priority.value); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	var status task.Status
	if c.status.set {
		if status, err = task.ParseStatus(c.status.value); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	return updateTask(ctx, cfg, svc, id, out, errOut, func(p *task.Payload) {
		if c.title.set {
			p.Title = c.title.value
		}
		if c.description.set {
			p.Description = c.description.value
		}
		if c.deadline.set {
			p.Deadline = strings.TrimSpace(c.deadline.value)
		}
		if c.priority.set {
			p.Priority = priority
		}
		if c.status.set {
			p.Status = status
		}
	})
}

// updateTask fetches a task, rebuilds its full payload, applies change and
// sends it back.
func updateTask(ctx context.Context, cfg *config.Config, svc service.Service, id int64, out, errOut io.Writer, change func(*task.Payload)) int {
	user, err := svc.CurrentUser(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	current, err := svc.GetTask(ctx, id)
	if err != nil {
		return reportError(errOut, err)
	}

	p := task.PayloadFrom(current, user.Username)
	change(&p)

	if _, err := svc.UpdateTask(ctx, id, p); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
