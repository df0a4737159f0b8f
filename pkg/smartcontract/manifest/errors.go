package manifest

import "fmt"

// DecodeError is returned for malformed metadata and for payloads that
// don't match it.
type DecodeError struct {
	What string
	Err  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.What, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
