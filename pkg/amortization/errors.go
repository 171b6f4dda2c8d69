package amortization

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when loan terms cannot produce a schedule.
var ErrInvalidInput = errors.New("invalid loan terms")

// InputError describes which term was rejected and why.
type InputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %g)", ErrInvalidInput, e.Field, e.Reason, e.Value)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidInput).
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}
