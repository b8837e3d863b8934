package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"taskcollab/internal/commands"
	"taskcollab/internal/config"
	"taskcollab/internal/exitcode"
	"taskcollab/internal/service"
	"taskcollab/internal/task"
	"taskcollab/internal/testutil"
)

// runCommand runs cmd against svc and captures its output.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:   t.TempDir(),
		Quiet: quiet,
	}

	code = cmd.Run(context.Background(), cfg, svc, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// loggedIn returns a FakeService with john doe logged in.
func loggedIn() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.SetUser("john doe", "john@example.com")
	return svc
}

func seed(svc *testutil.FakeService, title, priority, status string) task.Task {
	return svc.AddTask(task.Task{
		Title:       title,
		Description: "details",
		Priority:    priority,
		Status:      status,
		Deadline:    "2025-03-31",
		User:        "john_doe",
	})
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskcollab 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	testutil.GoldenString(t, "help", stdout)
}

func TestHelpCommand_SingleCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"ls"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "taskcollab list [--status <s>] [--priority <p>]") {
		t.Errorf("expected list usage, got %q", stdout)
	}
	if !strings.Contains(stdout, "Aliases: ls") {
		t.Errorf("expected aliases, got %q", stdout)
	}
}

func TestHelpCommand_Unknown(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, []string{"frobnicate"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: frobnicate\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_WithTasks(t *testing.T) {
	svc := loggedIn()
	seed(svc, "Write report", "A", "P")
	seed(svc, "Book flights", "B", "C")

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	want := "  ID  STATUS        PRIO   DEADLINE    TITLE\n" +
		"   1  Pendente      Alta   2025-03-31  Write report\n" +
		"   2  Concluída     Baixa  2025-03-31  Book flights\n"
	if stdout != want {
		t.Errorf("unexpected output:\n got: %q\nwant: %q", stdout, want)
	}
}

func TestListCommand_Filtered(t *testing.T) {
	svc := loggedIn()
	seed(svc, "high pending", "A", "P")
	seed(svc, "low pending", "B", "P")
	seed(svc, "high done", "A", "C")

	cmd := &commands.ListCmd{}
	cmd.SetFilters("pending", "high")
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "high pending") {
		t.Errorf("expected matching task, got %q", stdout)
	}
	if strings.Contains(stdout, "low pending") || strings.Contains(stdout, "high done") {
		t.Errorf("expected other tasks filtered out, got %q", stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, loggedIn(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no tasks found\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.ListCmd{}, loggedIn(), nil, true)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output, got %q", stdout)
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetFilters("someday", "")

	_, stderr, code := runCommand(t, cmd, loggedIn(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid status: someday\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_NotLoggedIn(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ListCmd{}, testutil.NewFakeService(), nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: taskcollab login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_SessionExpired(t *testing.T) {
	svc := loggedIn()
	svc.ListTasksErr = service.ErrSessionExpired

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session expired (run: taskcollab login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := loggedIn()
	svc.ListTasksErr = service.ErrUnavailable

	_, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: api unavailable\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShowCommand(t *testing.T) {
	svc := loggedIn()
	seed(svc, "Write report", "A", "P")

	stdout, _, code := runCommand(t, &commands.ShowCmd{}, svc, []string{"#1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, want := range []string{"#1 Write report", "Status:     Pendente", "Priority:   Alta", "Owner:      john doe", "details"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestShowCommand_NotFound(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ShowCmd{}, loggedIn(), []string{"9"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShowCommand_NoID(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ShowCmd{}, loggedIn(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr == "" {
		t.Error("expected error message")
	}
}

func TestAddCommand_Success(t *testing.T) {
	svc := loggedIn()
	cmd := &commands.AddCmd{}
	cmd.SetFields("Quarterly numbers", "2025-03-31", "", "")

	stdout, stderr, code := runCommand(t, cmd, svc, []string{"Write", "report"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "created #1\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	tasks := svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Write report" || got.Priority != "M" || got.Status != "P" {
		t.Errorf("unexpected task %+v", got)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	cmd := &commands.CreateCmd{}
	svc := loggedIn()
	fs := flagSet(t, cmd, "--description", "d", "--deadline", "2025-01-01", "--priority", "alta", "x")

	var out, errOut bytes.Buffer
	cfg := &config.Config{Quiet: true}
	code := cmd.Run(context.Background(), cfg, svc, fs.Args(), &out, &errOut)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errOut.String())
	}
	if out.String() != "" {
		t.Errorf("expected no output, got %q", out.String())
	}
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].Priority != "A" {
		t.Errorf("unexpected tasks %+v", tasks)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	svc := loggedIn()
	cmd := &commands.AddCmd{}
	cmd.SetFields("d", "2025-03-31", "", "")

	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Tasks()) != 0 {
		t.Error("expected no task created")
	}
}

func TestAddCommand_FlagAfterTitle(t *testing.T) {
	svc := loggedIn()
	cmd := &commands.AddCmd{}
	fs := flagSet(t, cmd, "--deadline", "2025-03-31", "Write", "report", "-d", "numbers")

	_, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: misplaced flag: -d (flags go before arguments)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Tasks()) != 0 {
		t.Error("expected no task created")
	}
}

func TestAddCommand_DashWordsInTitle(t *testing.T) {
	svc := loggedIn()
	cmd := &commands.AddCmd{}
	cmd.SetFields("d", "2025-03-31", "", "")

	_, stderr, code := runCommand(t, cmd, svc, []string{"Shift", "-5", "-", "offset"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if got := svc.Tasks()[0].Title; got != "Shift -5 - offset" {
		t.Errorf("unexpected title %q", got)
	}
}

func TestAddCommand_BadDeadline(t *testing.T) {
	cmd := &commands.AddCmd{}
	cmd.SetFields("d", "31/03/2025", "", "")

	_, stderr, code := runCommand(t, cmd, loggedIn(), []string{"x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: deadline must be YYYY-MM-DD\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_InvalidPriority(t *testing.T) {
	cmd := &commands.AddCmd{}
	cmd.SetFields("d", "2025-03-31", "urgent", "")

	_, stderr, code := runCommand(t, cmd, loggedIn(), []string{"x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid priority: urgent\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCommand_RemoteFieldError(t *testing.T) {
	svc := loggedIn()
	svc.CreateTaskErr = &service.RemoteError{
		Status: http.StatusBadRequest,
		Title:  "Validation failed",
		Fields: []service.FieldError{
			{Field: "prazo", Message: "Deadline cannot be in the past."},
			{Field: "titulo", Message: "Too long."},
		},
	}
	cmd := &commands.AddCmd{}
	cmd.SetFields("d", "2000-01-01", "", "")

	_, stderr, code := runCommand(t, cmd, svc, []string{"x"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: Deadline cannot be in the past.\n" {
		t.Errorf("expected first field message, got %q", stderr)
	}
}

func TestEditCommand_ChangesOnlyGivenFields(t *testing.T) {
	svc := loggedIn()
	seed(svc, "Write report", "A", "P")
	cmd := &commands.EditCmd{}
	fs := flagSet(t, cmd, "--title", "Write final report", "--status", "in progress", "1")

	stdout, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	got := svc.Tasks()[0]
	if got.Title != "Write final report" || got.Status != "EA" {
		t.Errorf("expected title and status changed, got %+v", got)
	}
	if got.Priority != "A" || got.Description != "details" || got.Deadline != "2025-03-31" {
		t.Errorf("expected other fields kept, got %+v", got)
	}
	if got.User != "john_doe" {
		t.Errorf("expected normalized owner, got %q", got.User)
	}
}

func TestEditCommand_NothingToChange(t *testing.T) {
	svc := loggedIn()
	seed(svc, "Write report", "A", "P")

	_, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"1"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: nothing to change\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestEditCommand_EmptyTitle(t *testing.T) {
	svc := loggedIn()
	seed(svc, "Write report", "A", "P")
	cmd := &commands.EditCmd{}
	fs := flagSet(t, cmd, "--title", "", "1")

	_, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: title required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Tasks()[0].Title != "Write report" {
		t.Error("expected task unchanged")
	}
}

func TestDoneCommand_Success(t *testing.T) {
	svc := loggedIn()
	seed(svc, "Write report", "A", "P")

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if got := svc.Tasks()[0]; got.Status != "C" || got.StatusDisplay != "Concluída" {
		t.Errorf("expected completed, got %+v", got)
	}
}

func TestDoneCommand_NoID(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, loggedIn(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr == "" {
		t.Error("expected error message")
	}
}

func TestDoneCommand_InvalidID(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, loggedIn(), []string{"abc"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid task id: abc\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDoneCommand_NotFound(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.DoneCmd{}, loggedIn(), []string{"7"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRmCommand_Success(t *testing.T) {
	svc := loggedIn()
	seed(svc, "one", "A", "P")
	seed(svc, "two", "A", "P")
	seed(svc, "three", "A", "P")

	stdout, _, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1", "#3", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	tasks := svc.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "two" {
		t.Errorf("expected only 'two' left, got %+v", tasks)
	}
}

func TestRmCommand_NoID(t *testing.T) {
	_, _, code := runCommand(t, &commands.RmCmd{}, loggedIn(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

func TestRmCommand_ServerError(t *testing.T) {
	svc := loggedIn()
	seed(svc, "one", "A", "P")
	svc.DeleteTaskErr = &service.RemoteError{
		Status: http.StatusInternalServerError,
		Title:  "Error",
		Fields: []service.FieldError{{Field: "general", Message: "Internal Server Error"}},
	}

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"1"}, false)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: Internal Server Error\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_WithPasswordFlag(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddAccount("john_doe", "john@example.com", "secret123")
	cmd := &commands.LoginCmd{}
	fs := flagSet(t, cmd, "--password", "secret123", "john", "doe")

	stdout, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "logged in as john doe <john@example.com>\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if !svc.LoggedIn() {
		t.Error("expected logged in")
	}
}

func TestLoginCommand_PromptsForPassword(t *testing.T) {
	var prompts []string
	restore := commands.SetPasswordReader(func(prompt string, errOut io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		return "secret123", nil
	})
	defer restore()

	svc := testutil.NewFakeService()
	svc.AddAccount("john_doe", "john@example.com", "secret123")

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, svc, []string{"john@example.com"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if len(prompts) != 1 {
		t.Errorf("expected one prompt, got %v", prompts)
	}
}

func TestLoginCommand_ConfiguredPassword(t *testing.T) {
	restore := commands.SetPasswordReader(func(string, io.Writer) (string, error) {
		t.Error("unexpected prompt")
		return "", nil
	})
	defer restore()

	svc := testutil.NewFakeService()
	svc.AddAccount("john_doe", "john@example.com", "secret123")

	var out, errOut bytes.Buffer
	cfg := &config.Config{Password: "secret123"}
	code := (&commands.LoginCmd{}).Run(context.Background(), cfg, svc, []string{"john_doe"}, &out, &errOut)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errOut.String())
	}
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddAccount("john_doe", "john@example.com", "secret123")
	cmd := &commands.LoginCmd{}
	fs := flagSet(t, cmd, "--password", "wrong", "john_doe")

	_, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: invalid credentials\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.LoggedIn() {
		t.Error("expected not logged in")
	}
}

func TestLoginCommand_NoCredential(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.LoginCmd{}, testutil.NewFakeService(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: email or username required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_FlagAfterCredential(t *testing.T) {
	restore := commands.SetPasswordReader(func(string, io.Writer) (string, error) {
		t.Error("unexpected prompt")
		return "", nil
	})
	defer restore()

	svc := testutil.NewFakeService()
	svc.AddAccount("john", "john@example.com", "pw123456")
	cmd := &commands.LoginCmd{}
	fs := flagSet(t, cmd, "john", "--password", "pw123456")

	_, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: misplaced flag: --password (flags go before arguments)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.LoggedIn() {
		t.Error("expected not logged in")
	}
}

func TestRegisterCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.RegisterCmd{}
	fs := flagSet(t, cmd, "--email", "jane@example.com", "--name", "Jane Roe", "--password", "password1")

	stdout, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "account created (run: taskcollab login)\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if len(svc.Registered) != 1 || svc.Registered[0].Username != "Jane_Roe" {
		t.Errorf("unexpected registrations %+v", svc.Registered)
	}
	if svc.LoggedIn() {
		t.Error("register must not log in")
	}
}

func TestRegisterCommand_PasswordMismatch(t *testing.T) {
	svc := testutil.NewFakeService()
	cmd := &commands.RegisterCmd{}
	fs := flagSet(t, cmd, "--email", "jane@example.com", "--name", "jane", "--password", "password1", "--confirm", "password2")

	_, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: passwords do not match\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Registered) != 0 {
		t.Error("expected no request")
	}
}

func TestRegisterCommand_ShortPassword(t *testing.T) {
	answers := []string{"short", "short"}
	restore := commands.SetPasswordReader(func(string, io.Writer) (string, error) {
		a := answers[0]
		answers = answers[1:]
		return a, nil
	})
	defer restore()

	svc := testutil.NewFakeService()
	cmd := &commands.RegisterCmd{}
	fs := flagSet(t, cmd, "--email", "jane@example.com", "--name", "jane")

	_, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: password must be at least 8 characters\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestRegisterCommand_FieldErrorsConsolidated(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RegisterErr = &service.RemoteError{
		Status: http.StatusBadRequest,
		Fields: []service.FieldError{
			{Field: "username", Message: "A user with that username already exists."},
			{Field: "email", Message: "A user with that email already exists."},
		},
	}
	cmd := &commands.RegisterCmd{}
	fs := flagSet(t, cmd, "--email", "jane@example.com", "--name", "jane", "--password", "password1")

	_, stderr, code := runCommand(t, cmd, svc, fs.Args(), false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	want := "error: username: A user with that username already exists., email: A user with that email already exists.\n"
	if stderr != want {
		t.Errorf("unexpected stderr:\n got: %q\nwant: %q", stderr, want)
	}
}

func TestRegisterCommand_InvalidEmail(t *testing.T) {
	cmd := &commands.RegisterCmd{}
	fs := flagSet(t, cmd, "--email", "jane", "--name", "jane", "--password", "password1")

	_, stderr, code := runCommand(t, cmd, testutil.NewFakeService(), fs.Args(), false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid email: jane\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLogoutCommand(t *testing.T) {
	svc := loggedIn()

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, svc, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected output %q", stdout)
	}
	if svc.LoggedIn() {
		t.Error("expected logged out")
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, testutil.NewFakeService(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not logged in\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestLogoutCommand_Failure(t *testing.T) {
	svc := loggedIn()
	svc.LogoutErr = errors.New("disk full")

	_, stderr, code := runCommand(t, &commands.LogoutCmd{}, svc, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "disk full") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestWhoamiCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, loggedIn(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "john doe <john@example.com>\n" {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestRegistry_AliasesAndClashes(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if cmd, ok := r.Find("LS"); !ok || cmd.Name() != "list" {
		t.Errorf("expected alias lookup to find list, got %v %v", cmd, ok)
	}
	if err := r.Register(&commands.ListCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if n := len(r.All()); n != 1 {
		t.Errorf("expected 1 command, got %d", n)
	}
}
