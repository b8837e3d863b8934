package commands_test

import (
	"flag"
	"io"
	"testing"

	"taskcollab/internal/commands"
)

// flagSet parses args with cmd's flags, the way the dispatcher does.
func flagSet(t *testing.T, cmd commands.Command, args ...string) *flag.FlagSet {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}
