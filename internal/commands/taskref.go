package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTaskIDRequired indicates no task ID was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses a single task ID from args. A leading "#" is allowed,
// matching how ids are printed.
func ParseTaskID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, ErrTaskIDRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	return parseID(args[0])
}

// ParseTaskIDs parses one or more task IDs. Duplicates are dropped, order
// is kept.
func ParseTaskIDs(args []string) ([]int64, error) {
	if len(args) == 0 {
		return nil, ErrTaskIDRequired
	}
	seen := make(map[int64]bool, len(args))
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func parseID(arg string) (int64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(arg), "#")
	if !isAllDigits(s) {
		return 0, fmt.Errorf("invalid task id: %s", arg)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", arg)
	}
	return id, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
