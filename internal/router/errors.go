package router

// RouterError is a local validation/authorization/state failure (spec §7):
// carries only the text the client's error{message} payload exposes.
// Returned before any state mutation has happened, never after — a
// partially-applied transition is never rolled back by raising one of
// these, it's simply never started.
type RouterError struct {
	Message string
}

func (e *RouterError) Error() string { return e.Message }

func newError(message string) *RouterError {
	return &RouterError{Message: message}
}
