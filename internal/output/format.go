// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskcollab/internal/service"
	"taskcollab/internal/task"
)

const (
	// Separator frames the task detail header.
	Separator = "------------"

	timestampLayout = "2006-01-02 15:04"
)

// FormatTaskHeader writes the column header of the task table.
func FormatTaskHeader(w io.Writer) {
	fmt.Fprintf(w, "%4s  %-12s  %-5s  %-10s  %s\n", "ID", "STATUS", "PRIO", "DEADLINE", "TITLE")
}

// FormatTask formats one task row.
// Format: "{ID:>4}  {STATUS:<12}  {PRIO:<5}  {DEADLINE:<10}  {TITLE}\n"
func FormatTask(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "%4d  %-12s  %-5s  %-10s  %s\n",
		t.ID, t.StatusLabel(), t.PriorityLabel(), t.Deadline, normalizeTitle(t.Title))
}

// FormatTaskDetail writes every field of a task.
func FormatTaskDetail(w io.Writer, t task.Task) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "#%d %s\n", t.ID, normalizeTitle(t.Title))
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "Status:     %s\n", t.StatusLabel())
	fmt.Fprintf(w, "Priority:   %s\n", t.PriorityLabel())
	fmt.Fprintf(w, "Deadline:   %s\n", t.Deadline)
	if t.User != "" {
		fmt.Fprintf(w, "Owner:      %s\n", task.DisplayUsername(t.User))
	}
	if !t.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:    %s\n", formatTime(t.CreatedAt))
	}
	if t.UpdatedAt != nil && !t.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated:    %s\n", formatTime(*t.UpdatedAt))
	}
	if t.CompletedAt != nil && !t.CompletedAt.IsZero() {
		fmt.Fprintf(w, "Completed:  %s\n", formatTime(*t.CompletedAt))
	}
	if desc := strings.TrimSpace(t.Description); desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, desc)
	}
}

// FormatUser writes the logged-in user.
func FormatUser(w io.Writer, u service.User) {
	if u.Email == "" {
		fmt.Fprintln(w, u.Username)
		return
	}
	fmt.Fprintf(w, "%s <%s>\n", u.Username, u.Email)
}

// formatTime prints parsed times in UTC and anything else as received.
func formatTime(ts task.Timestamp) string {
	if !ts.Parsed() {
		return ts.Raw
	}
	return ts.Time.UTC().Format(timestampLayout)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
