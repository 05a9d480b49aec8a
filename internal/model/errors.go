package model

import (
	"errors"
	"fmt"
)

// ErrInconsistentReference is returned when decoded records contradict each
// other: counts that must match do not, or an index points past its table.
var ErrInconsistentReference = errors.New("inconsistent reference")

// InconsistentReferenceError describes which reference failed.
type InconsistentReferenceError struct {
	What   string
	Detail string
}

func (e *InconsistentReferenceError) Error() string {
	return fmt.Sprintf("inconsistent reference: %s: %s", e.What, e.Detail)
}

// Is matches ErrInconsistentReference.
func (e *InconsistentReferenceError) Is(target error) bool {
	return target == ErrInconsistentReference
}

func inconsistent(what, format string, args ...any) error {
	return &InconsistentReferenceError{What: what, Detail: fmt.Sprintf(format, args...)}
}
