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
	"taskcollab/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskcollab` (no args) and `taskcollab list [filters]`.
type ListCmd struct {
	status   string
	priority string
}

// SetFilters sets the filter flags (for testing).
func (c *ListCmd) SetFilters(status, priority string) {
	c.status = status
	c.priority = priority
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "taskcollab list [--status <s>] [--priority <p>]" }
func (c *ListCmd) NeedsService() bool { return true }
func (c *ListCmd) NeedsAuth() bool    { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := c.filter()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	tasks = filter.Apply(tasks)
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	output.FormatTaskHeader(out)
	for _, t := range tasks {
		output.FormatTask(out, t)
	}
	return exitcode.Success
}

func (c *ListCmd) filter() (task.Filter, error) {
	var f task.Filter
	if c.status != "" {
		s, err := task.ParseStatus(c.status)
		if err != nil {
			return f, err
		}
		f.Status = &s
	}
	if c.priority != "" {
		p, err := task.ParsePriority(c.priority)
		if err != nil {
			return f, err
		}
		f.Priority = &p
	}
	return f, nil
}
