// Package task defines the task model, its wire enums and client-side validation.
package task

import (
	"fmt"
	"strings"
)

// Priority is a task priority as sent on the wire.
type Priority string

// Priority wire codes.
const (
	PriorityLow    Priority = "B"
	PriorityMedium Priority = "M"
	PriorityHigh   Priority = "A"
)

// Status is a task status as sent on the wire.
type Status string

// Status wire codes.
const (
	StatusPending    Status = "P"
	StatusInProgress Status = "EA"
	StatusCompleted  Status = "C"
)

type enumEntry struct {
	code  string
	name  string
	label string
}

// Display labels are what the API returns in the *_display fields.
var priorities = []enumEntry{
	{code: string(PriorityLow), name: "low", label: "Baixa"},
	{code: string(PriorityMedium), name: "medium", label: "Media"},
	{code: string(PriorityHigh), name: "high", label: "Alta"},
}

var statuses = []enumEntry{
	{code: string(StatusPending), name: "pending", label: "Pendente"},
	{code: string(StatusInProgress), name: "in-progress", label: "Em Andamento"},
	{code: string(StatusCompleted), name: "completed", label: "Concluída"},
}

// Priorities returns all priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// Statuses returns all statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// ParsePriority accepts a wire code, a display label or an English name.
func ParsePriority(s string) (Priority, error) {
	e, ok := lookup(priorities, s)
	if !ok {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return Priority(e.code), nil
}

// ParseStatus accepts a wire code, a display label or an English name.
func ParseStatus(s string) (Status, error) {
	e, ok := lookup(statuses, s)
	if !ok {
		return "", fmt.Errorf("invalid status: %s", s)
	}
	return Status(e.code), nil
}

// Valid reports whether p is a known wire code.
func (p Priority) Valid() bool {
	_, ok := byCode(priorities, string(p))
	return ok
}

// Label returns the display label, or "" for an unknown code.
func (p Priority) Label() string {
	e, _ := byCode(priorities, string(p))
	return e.label
}

// Name returns the English name used on the command line.
func (p Priority) Name() string {
	e, _ := byCode(priorities, string(p))
	return e.name
}

func (p Priority) String() string { return string(p) }

// Valid reports whether s is a known wire code.
func (s Status) Valid() bool {
	_, ok := byCode(statuses, string(s))
	return ok
}

// Label returns the display label, or "" for an unknown code.
func (s Status) Label() string {
	e, _ := byCode(statuses, string(s))
	return e.label
}

// Name returns the English name used on the command line.
func (s Status) Name() string {
	e, _ := byCode(statuses, string(s))
	return e.name
}

func (s Status) String() string { return string(s) }

func byCode(entries []enumEntry, code string) (enumEntry, bool) {
	for _, e := range entries {
		if e.code == code {
			return e, true
		}
	}
	return enumEntry{}, false
}

// lookup matches codes exactly, then labels and names case-insensitively.
// "in progress", "in_progress" and "inprogress" all match "in-progress".
func lookup(entries []enumEntry, s string) (enumEntry, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return enumEntry{}, false
	}
	if e, ok := byCode(entries, s); ok {
		return e, true
	}
	key := foldKey(s)
	for _, e := range entries {
		if key == foldKey(e.label) || key == foldKey(e.name) || key == strings.ToLower(e.code) {
			return e, true
		}
	}
	return enumEntry{}, false
}

func foldKey(s string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return r.Replace(strings.ToLower(s))
}
