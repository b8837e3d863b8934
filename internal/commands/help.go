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
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command. With a command name it prints that
// command's usage only.
type HelpCmd struct {
	// Registry defaults to DefaultRegistry.
	Registry *Registry
}

func (c *HelpCmd) registry() *Registry {
	if c.Registry != nil {
		return c.Registry
	}
	return DefaultRegistry
}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskcollab help [command]" }
func (c *HelpCmd) NeedsService() bool { return false }
func (c *HelpCmd) NeedsAuth() bool    { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := c.registry().Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprint(out, helpText(c.registry()))
	return exitcode.Success
}

// helpText lists every command with its synopsis, then the common flags.
func helpText(r *Registry) string {
	var b strings.Builder
	b.WriteString("Usage:\n  taskcollab [common flags] <command> [flags] [args]\n\n")
	b.WriteString("Running taskcollab without a command lists your tasks.\n\n")
	b.WriteString("Commands:\n")
	for _, cmd := range r.All() {
		fmt.Fprintf(&b, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
	b.WriteString(commonHelp)
	return b.String()
}

const commonHelp = `
Common flags:
  --config <dir>   Override config directory
  --api <url>      Override the API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKCOLLAB_API_URL        API base URL (default http://localhost:8000)
  TASKCOLLAB_TIMEOUT        Request timeout (default 10s)
  TASKCOLLAB_PASSWORD       Password used by login instead of prompting
  TASKCOLLAB_LOG_LEVEL      debug, info, warn or error
  TASKCOLLAB_LOG_ENCODING   console or json

Run 'taskcollab help <command>' for the flags of a command.
`
