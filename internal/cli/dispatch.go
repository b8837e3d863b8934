// Package cli parses the command line and runs commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"taskcollab/internal/commands"
	"taskcollab/internal/config"
	"taskcollab/internal/exitcode"
	"taskcollab/internal/logging"
	"taskcollab/internal/service"
)

// ServiceFactory creates the backend Service for a command.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory

	// logOut receives log lines; nil means stderr.
	logOut io.Writer
}

// NewDispatcher creates a dispatcher over registry. factory may be nil for
// dispatchers that only run commands without a backend.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// SetLogOutput redirects log output (for testing).
func (d *Dispatcher) SetLogOutput(w io.Writer) {
	d.logOut = w
}

// Run parses arguments and dispatches to the matching command.
// No arguments lists tasks. Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	name := "list"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	// Common flags come after the command name.
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return d.dispatch(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	apiURL    string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.StringVar(&f.apiURL, "api", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	positional := fs.Args()
	if len(positional) > 0 && strings.HasPrefix(positional[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positional[0])
		return exitcode.UserError
	}

	cfg, err := config.New(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if common.apiURL != "" {
		if err := cfg.SetAPIURL(common.apiURL); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	logger := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		Debug:    cfg.Debug,
	}, d.logOut)
	defer func() { _ = logger.Sync() }()
	logger.Debug("dispatch",
		zap.String("command", cmd.Name()),
		zap.String("api", cfg.APIURL),
		zap.String("config", cfg.Dir),
	)

	var svc service.Service
	if cmd.NeedsService() {
		if d.factory == nil {
			fmt.Fprintf(errOut, "error: %s needs a backend\n", cmd.Name())
			return exitcode.BackendError
		}
		svc, err = d.factory(ctx, cfg, logger)
		if err != nil {
			logger.Debug("service init failed", zap.Error(err))
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		if closer, ok := svc.(io.Closer); ok {
			defer closer.Close()
		}
	}

	if cmd.NeedsAuth() {
		if _, err := svc.CurrentUser(ctx); err != nil {
			if errors.Is(err, service.ErrNotLoggedIn) {
				fmt.Fprintln(errOut, "error: not logged in (run: taskcollab login)")
				return exitcode.AuthError
			}
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
	}

	return cmd.Run(ctx, cfg, svc, positional, out, errOut)
}

// flagError rewrites the flag package's messages into the CLI's wording.
func flagError(err error) string {
	msg := err.Error()
	if name, ok := strings.CutPrefix(msg, "flag provided but not defined: "); ok {
		return "unknown flag: " + name
	}
	return msg
}
