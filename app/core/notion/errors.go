package notion

import "fmt"

// ValidationError reports malformed input (bad identifier, empty required
// field) rejected before any network call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("notion validation: %s", e.Reason)
}

func validationErrorf(format string, v ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, v...)}
}

// ConnectionError reports an unreachable store or a response with an
// unexpected shape.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("notion %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func connectionError(op string, err error) error {
	return &ConnectionError{Op: op, Err: err}
}
