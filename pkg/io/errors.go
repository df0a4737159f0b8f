package io

import "fmt"

// TrailingBytesError is returned by FromBytes when the input is not consumed
// completely.
type TrailingBytesError struct {
	Left int
}

func errTrailing(n int) error {
	return &TrailingBytesError{Left: n}
}

// Error implements the error interface.
func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("%d trailing bytes after decoding", e.Left)
}
