package commands

import (
	"fmt"
	"strings"
)

// optionalString is a string flag that remembers whether it was set, so
// "--title ''" can be told apart from an absent flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// joinWords joins positional arguments into one value. Flag parsing stops at
// the first positional argument, so a flag-shaped word after it is reported
// instead of becoming part of the value.
func joinWords(args []string) (string, error) {
	for _, arg := range args {
		if looksLikeFlag(arg) {
			return "", fmt.Errorf("misplaced flag: %s (flags go before arguments)", arg)
		}
	}
	return strings.TrimSpace(strings.Join(args, " ")), nil
}

// looksLikeFlag matches "--name" and "-x" forms but not "-" or "-5".
func looksLikeFlag(arg string) bool {
	if strings.HasPrefix(arg, "--") {
		return len(arg) > 2
	}
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	c := arg[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
