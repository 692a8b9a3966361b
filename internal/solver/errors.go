package solver

import (
	"errors"
	"fmt"
)

// Kind classifies a solve failure.
type Kind string

const (
	KindWrongInputCount     Kind = "wrong_input_count"
	KindNonFiniteResult     Kind = "non_finite_result"
	KindUnderdetermined     Kind = "underdetermined"
	KindInvalidNumericInput Kind = "invalid_numeric_input"
	KindUnknownFormula      Kind = "unknown_formula"
	KindOutOfRange          Kind = "out_of_range"
)

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrWrongInputCount     = errors.New("wrong input count")
	ErrNonFiniteResult     = errors.New("non-finite result")
	ErrUnderdetermined     = errors.New("underdetermined")
	ErrInvalidNumericInput = errors.New("invalid numeric input")
	ErrUnknownFormula      = errors.New("unknown formula")
	ErrOutOfRange          = errors.New("result out of range")
)

var sentinels = map[Kind]error{
	KindWrongInputCount:     ErrWrongInputCount,
	KindNonFiniteResult:     ErrNonFiniteResult,
	KindUnderdetermined:     ErrUnderdetermined,
	KindInvalidNumericInput: ErrInvalidNumericInput,
	KindUnknownFormula:      ErrUnknownFormula,
	KindOutOfRange:          ErrOutOfRange,
}

// Error is the structured failure returned by Solve.
type Error struct {
	Kind     Kind
	Formula  string
	Variable string
	Expected int
	Actual   int
	Reason   string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindWrongInputCount:
		return fmt.Sprintf("%s: enter exactly %d values, got %d", e.Formula, e.Expected, e.Actual)
	case KindUnknownFormula:
		return fmt.Sprintf("unknown formula %q", e.Formula)
	}
	msg := fmt.Sprintf("%s: %s", e.Formula, sentinels[e.Kind])
	if e.Variable != "" {
		msg += fmt.Sprintf(" for %s", e.Variable)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is matches the sentinel error of the same Kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// KindOf returns the Kind of err, or "" when err is not a solver error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
