package solver

import "fmt"

// Notation selects how a solved value is rendered.
type Notation int

const (
	// Fixed renders a fixed number of decimal places.
	Fixed Notation = iota
	// Exponential renders a mantissa with Places digits and a short exponent.
	Exponential
	// Ceiling rounds up to the next whole number.
	Ceiling
)

func (n Notation) String() string {
	switch n {
	case Fixed:
		return "fixed"
	case Exponential:
		return "exponential"
	case Ceiling:
		return "ceiling"
	default:
		return fmt.Sprintf("notation(%d)", int(n))
	}
}

// Display is the rendering policy of a variable when it is the solved unknown.
type Display struct {
	Notation Notation
	Places   int
}

// Constraint restricts the values a caller may supply for a variable.
type Constraint struct {
	Min     *float64
	Max     *float64
	Integer bool
}

// Check reports why v violates the constraint, or "" when it does not.
func (c Constraint) Check(v float64) string {
	if c.Integer && v != float64(int64(v)) {
		return "must be a whole number"
	}
	if c.Min != nil && v < *c.Min {
		return fmt.Sprintf("must be at least %g", *c.Min)
	}
	if c.Max != nil && v > *c.Max {
		return fmt.Sprintf("must be at most %g", *c.Max)
	}
	return ""
}

// Variable is a named numeric slot of a Formula.
type Variable struct {
	Name       string
	Label      string
	Unit       string
	Display    Display
	Constraint Constraint
}

func bound(v float64) *float64 { return &v }
