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
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// taskFields are the flags shared by add and create.
type taskFields struct {
	description string
	deadline    string
	priority    string
	status      string
}

func (f *taskFields) register(fs *flag.FlagSet) {
	fs.StringVar(&f.description, "description", "", "")
	fs.StringVar(&f.description, "d", "", "")
	fs.StringVar(&f.deadline, "deadline", "", "")
	fs.StringVar(&f.priority, "priority", "", "")
	fs.StringVar(&f.priority, "p", "", "")
	fs.StringVar(&f.status, "status", "", "")
	fs.StringVar(&f.status, "s", "", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	fields taskFields
}

// SetFields sets the task flags (for testing).
func (c *AddCmd) SetFields(description, deadline, priority, status string) {
	c.fields = taskFields{description: description, deadline: deadline, priority: priority, status: status}
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "taskcollab add --description <text> --deadline <YYYY-MM-DD> [--priority <p>] [--status <s>] <title...>"
}
func (c *AddCmd) NeedsService() bool { return true }
func (c *AddCmd) NeedsAuth() bool    { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) { c.fields.register(fs) }

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, svc, c.fields, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	fields taskFields
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string {
	return "taskcollab create --description <text> --deadline <YYYY-MM-DD> [--priority <p>] [--status <s>] <title...>"
}
func (c *CreateCmd) NeedsService() bool { return true }
func (c *CreateCmd) NeedsAuth() bool    { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) { c.fields.register(fs) }

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, svc, c.fields, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
// Priority defaults to medium and status to pending.
func runAdd(ctx context.Context, cfg *config.Config, svc service.Service, fields taskFields, args []string, out, errOut io.Writer) int {
	title, err := joinWords(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	p := task.NewPayload()
	p.Title = title
	p.Description = fields.description
	p.Deadline = strings.TrimSpace(fields.deadline)

	if fields.priority != "" {
		priority, err := task.ParsePriority(fields.priority)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		p.Priority = priority
	}
	if fields.status != "" {
		status, err := task.ParseStatus(fields.status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		p.Status = status
	}

	created, err := svc.CreateTask(ctx, p)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "created #%d\n", created.ID)
	}
	return exitcode.Success
}
