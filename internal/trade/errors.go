package trade

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrStructural  = errors.New("structural validation failed")
	ErrSemantic    = errors.New("semantic validation failed")
	ErrUnsupported = errors.New("unsupported instrument")
	ErrIO          = errors.New("io failure")
)

// StructuralValidationError lists every required key missing from a record,
// or wraps the decode failure for malformed input.
type StructuralValidationError struct {
	Missing []string
	Cause   error
}

func (e *StructuralValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed trade record: %v", e.Cause)
	}
	return "missing required keys: " + strings.Join(e.Missing, ", ")
}

func (e *StructuralValidationError) Unwrap() error { return e.Cause }

func (e *StructuralValidationError) Is(target error) bool { return target == ErrStructural }

// SemanticValidationError reports a field whose value is well-formed JSON but
// not acceptable, e.g. a bad date or exercise style.
type SemanticValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *SemanticValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *SemanticValidationError) Is(target error) bool { return target == ErrSemantic }

type UnsupportedInstrumentError struct {
	Value string
}

func (e *UnsupportedInstrumentError) Error() string {
	return fmt.Sprintf("unsupported instrument %q", e.Value)
}

func (e *UnsupportedInstrumentError) Is(target error) bool { return target == ErrUnsupported }

type UnsupportedSubInstrumentError struct {
	Instrument Instrument
	Value      string
}

func (e *UnsupportedSubInstrumentError) Error() string {
	var choices string
	if subs := SubInstruments(e.Instrument); len(subs) > 0 {
		names := make([]string, len(subs))
		for i, s := range subs {
			names[i] = string(s)
		}
		choices = " (one of " + strings.Join(names, ", ") + ")"
	}
	if e.Value == "" {
		return fmt.Sprintf("instrument %s requires a sub-instrument%s", e.Instrument, choices)
	}
	return fmt.Sprintf("unsupported sub-instrument %q for %s%s", e.Value, e.Instrument, choices)
}

func (e *UnsupportedSubInstrumentError) Is(target error) bool { return target == ErrUnsupported }

// IOError wraps a sink or source failure with its destination.
type IOError struct {
	Op          string
	Destination string
	Err         error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Destination, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
