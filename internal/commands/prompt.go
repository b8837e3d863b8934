package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword prompts on errOut and reads a line from stdin, without echo
// when stdin is a terminal. Replaced in tests.
var readPassword = func(prompt string, errOut io.Writer) (string, error) {
	fmt.Fprint(errOut, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// passwordFrom returns the flag value, then the configured password, then
// prompts.
func passwordFrom(flagValue, configured, prompt string, errOut io.Writer) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if configured != "" {
		return configured, nil
	}
	return readPassword(prompt, errOut)
}
