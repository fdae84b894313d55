package experiment

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNumerical    = errors.New("numerical failure")
)

// InputError reports a rejected field of the input contract.
type InputError struct {
	Field  string
	Value  any
	Reason string
}

func (e *InputError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// NumericalError reports an integration that did not reach the end of the
// horizon with a finite solution.
type NumericalError struct {
	Resistance float64
	Time       float64
	Err        error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("resistance %g ohms: integration failed at t=%.6g s: %v", e.Resistance, e.Time, e.Err)
}

func (e *NumericalError) Unwrap() error { return e.Err }

func (e *NumericalError) Is(target error) bool { return target == ErrNumerical }
