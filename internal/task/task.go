package task

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the wire format of the deadline field.
const DateLayout = "2006-01-02"

// Task is a task as returned by the remote API.
// Status and Priority hold whatever the API sent; use CurrentStatus and
// CurrentPriority to resolve them.
type Task struct {
	ID              int64      `json:"id"`
	Title           string     `json:"titulo"`
	Description     string     `json:"descricao"`
	Priority        string     `json:"prioridade"`
	Status          string     `json:"status"`
	Deadline        string     `json:"prazo"`
	User            string     `json:"usuario"`
	StatusDisplay   string     `json:"status_display"`
	PriorityDisplay string     `json:"prioridade_display"`
	CreatedAt       Timestamp  `json:"criado_em"`
	UpdatedAt       *Timestamp `json:"atualizado_em,omitempty"`
	CompletedAt     *Timestamp `json:"concluido_em,omitempty"`
}

// CurrentStatus resolves the status from the display label, falling back
// to the raw wire field. Unknown values resolve to Pending.
func (t Task) CurrentStatus() Status {
	if s, err := ParseStatus(t.StatusDisplay); err == nil {
		return s
	}
	if s, err := ParseStatus(t.Status); err == nil {
		return s
	}
	return StatusPending
}

// CurrentPriority resolves the priority like CurrentStatus. Unknown values
// resolve to Low.
func (t Task) CurrentPriority() Priority {
	if p, err := ParsePriority(t.PriorityDisplay); err == nil {
		return p
	}
	if p, err := ParsePriority(t.Priority); err == nil {
		return p
	}
	return PriorityLow
}

// StatusLabel returns the display label, deriving it when the API omitted it.
func (t Task) StatusLabel() string {
	if t.StatusDisplay != "" {
		return t.StatusDisplay
	}
	return t.CurrentStatus().Label()
}

// PriorityLabel returns the display label, deriving it when the API omitted it.
func (t Task) PriorityLabel() string {
	if t.PriorityDisplay != "" {
		return t.PriorityDisplay
	}
	return t.CurrentPriority().Label()
}

// Payload is the body of create and update requests.
type Payload struct {
	Title       string   `json:"titulo"`
	Description string   `json:"descricao"`
	Priority    Priority `json:"prioridade"`
	Status      Status   `json:"status"`
	Deadline    string   `json:"prazo"`
	User        string   `json:"usuario"`
}

// NewPayload returns a payload with the default priority and status.
func NewPayload() Payload {
	return Payload{
		Priority: PriorityMedium,
		Status:   StatusPending,
	}
}

// PayloadFrom rebuilds a complete payload from a fetched task, since the
// API only accepts full updates.
func PayloadFrom(t Task, username string) Payload {
	return Payload{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.CurrentPriority(),
		Status:      t.CurrentStatus(),
		Deadline:    t.Deadline,
		User:        NormalizeUsername(username),
	}
}

// Validate checks required fields and enum values.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "titulo", Message: "title required"}
	}
	if strings.TrimSpace(p.Description) == "" {
		return &ValidationError{Field: "descricao", Message: "description required"}
	}
	if strings.TrimSpace(p.Deadline) == "" {
		return &ValidationError{Field: "prazo", Message: "deadline required"}
	}
	if _, err := time.Parse(DateLayout, p.Deadline); err != nil {
		return &ValidationError{Field: "prazo", Message: "deadline must be YYYY-MM-DD"}
	}
	if !p.Priority.Valid() {
		return &ValidationError{Field: "prioridade", Message: "invalid priority: " + string(p.Priority)}
	}
	if !p.Status.Valid() {
		return &ValidationError{Field: "status", Message: "invalid status: " + string(p.Status)}
	}
	return nil
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizeUsername replaces each run of whitespace with a single underscore.
func NormalizeUsername(s string) string {
	return whitespaceRun.ReplaceAllString(s, "_")
}

// DisplayUsername reverses NormalizeUsername for display.
func DisplayUsername(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}
