package scale

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is returned when a Go value can't be encoded as the
// requested type.
var ErrTypeMismatch = errors.New("value doesn't match type")

// UnknownTypeError is returned for type ids absent from the registry.
type UnknownTypeError struct {
	ID uint32
}

// Error implements the error interface.
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type id %d", e.ID)
}

// UnknownVariantError is returned when an enum index or name has no
// definition.
type UnknownVariantError struct {
	Type  string
	Index int
	Name  string
}

// Error implements the error interface.
func (e *UnknownVariantError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s has no variant %q", e.Type, e.Name)
	}
	return fmt.Sprintf("%s has no variant with index %d", e.Type, e.Index)
}

func mismatch(t *Type, v any) error {
	return fmt.Errorf("%w: can't encode %T as %s (%s)", ErrTypeMismatch, v, t.Name(), t.Kind)
}
