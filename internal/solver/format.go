package solver

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatValue renders v according to d.
//
// Exponential output uses the short exponent form "1.0000e-3" rather than
// Go's "1.0000e-03".
func FormatValue(v float64, d Display) string {
	switch d.Notation {
	case Exponential:
		return formatExponential(v, d.Places)
	case Ceiling:
		return strconv.FormatFloat(ceil(v), 'f', 0, 64)
	default:
		return decimal.NewFromFloat(v).StringFixed(int32(d.Places))
	}
}

func formatExponential(v float64, places int) string {
	s := strconv.FormatFloat(v, 'e', places, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// formatOperand renders a supplied value the way it is echoed into equations
// when the caller gave it as a number rather than text.
func formatOperand(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
