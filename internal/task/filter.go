package task

// Filter selects tasks by status and priority. A nil field matches all.
type Filter struct {
	Status   *Status
	Priority *Priority
}

// IsZero reports whether the filter matches every task.
func (f Filter) IsZero() bool {
	return f.Status == nil && f.Priority == nil
}

// Match compares against the display labels the API returns.
func (f Filter) Match(t Task) bool {
	if f.Status != nil && t.StatusLabel() != f.Status.Label() {
		return false
	}
	if f.Priority != nil && t.PriorityLabel() != f.Priority.Label() {
		return false
	}
	return true
}

// Apply returns the matching tasks in their original order.
func (f Filter) Apply(tasks []Task) []Task {
	result := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			result = append(result, t)
		}
	}
	return result
}
