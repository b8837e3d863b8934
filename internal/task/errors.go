package task

// ValidationError reports a missing or invalid field caught before any
// request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
