package igc

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is matched by EmptyInputError via errors.Is.
var ErrEmptyInput = errors.New("empty or unreadable igc log")

// StructuralError reports a line that does not fit the shape of the log:
// unsupported kind, missing mandatory field, duplicate unique record or a
// record in the wrong position.
type StructuralError struct {
	Line         int
	Kind         Kind
	Reason       string
	PreviousLine int // set for uniqueness violations
}

func (e *StructuralError) Error() string {
	if e.PreviousLine > 0 {
		return fmt.Sprintf("line %d: %s (first seen on line %d)", e.Line, e.Reason, e.PreviousLine)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// FieldValidationError reports an extracted value that failed its
// validation rule.
type FieldValidationError struct {
	Line  int
	Kind  Kind
	Field string
	Value string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("line %d: invalid %s record field %q: %q", e.Line, e.Kind, e.Field, e.Value)
}

// EmptyInputError is returned when no line produced an accepted record.
type EmptyInputError struct {
	Lines int // non-blank lines seen
}

func (e *EmptyInputError) Error() string {
	if e.Lines == 0 {
		return ErrEmptyInput.Error()
	}
	return fmt.Sprintf("%s: none of %d lines was accepted", ErrEmptyInput, e.Lines)
}

func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// Rejection describes a position fix dropped by the builder. It never
// aborts a parse.
type Rejection struct {
	Line   int
	Reason string
	Speed  float64
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("line %d: fix rejected: %s", r.Line, r.Reason)
}
