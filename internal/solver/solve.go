package solver

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Request maps variable names to the text the caller supplied. Blank or
// missing entries are unset.
type Request map[string]string

// Result is the outcome of a successful solve.
type Result struct {
	Formula  string
	Variable string
	Label    string
	// Value is the solved value after the display policy, so a ceiled step
	// count is a whole number here.
	Value float64
	// Exact is the value before ceiling; nil unless the policy changed it.
	Exact    *float64
	Text     string
	Unit     string
	Equation string
}

// ceilTolerance absorbs floating-point noise in quotients that are whole
// numbers on paper, e.g. log(0.001)/log(0.1).
const ceilTolerance = 1e-9

func ceil(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < ceilTolerance {
		return r
	}
	return math.Ceil(v)
}

func parseFinite(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Solve computes the single unset variable of f from req.
//
// Exactly RequiredFilledCount values must be set. Solve has no side effects.
func Solve(f *Formula, req Request) (Result, error) {
	names := make([]string, 0, len(req))
	for name := range req {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !f.HasVariable(name) {
			return Result{}, &Error{Kind: KindInvalidNumericInput, Formula: f.ID, Variable: name, Reason: "not a variable of this formula"}
		}
	}

	ops := Operands{
		values: make(map[string]float64, len(f.Variables)),
		raw:    make(map[string]string, len(f.Variables)),
	}
	var unset []string
	for _, v := range f.Variables {
		text := strings.TrimSpace(req[v.Name])
		x, ok := parseFinite(text)
		if !ok {
			unset = append(unset, v.Name)
			continue
		}
		if reason := v.Constraint.Check(x); reason != "" {
			return Result{}, &Error{Kind: KindInvalidNumericInput, Formula: f.ID, Variable: v.Name, Reason: reason}
		}
		ops.values[v.Name] = x
		ops.raw[v.Name] = text
	}

	if len(unset) > 0 && allPinned(f, unset) {
		return Result{}, &Error{
			Kind:     KindUnderdetermined,
			Formula:  f.ID,
			Variable: strings.Join(unset, ", "),
			Reason:   "cannot be isolated from a single relation",
		}
	}

	set := len(f.Variables) - len(unset)
	if set != f.RequiredFilledCount() {
		return Result{}, &Error{Kind: KindWrongInputCount, Formula: f.ID, Expected: f.RequiredFilledCount(), Actual: set}
	}

	unknown := unset[0]
	r, ok := f.rearrangements[unknown]
	if !ok {
		return Result{}, &Error{Kind: KindUnderdetermined, Formula: f.ID, Variable: unknown}
	}

	value := r.Solve(ops)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{}, &Error{Kind: KindNonFiniteResult, Formula: f.ID, Variable: unknown, Reason: formatOperand(value)}
	}

	v, _ := f.Variable(unknown)
	res := Result{
		Formula:  f.ID,
		Variable: unknown,
		Label:    v.Label,
		Value:    value,
		Unit:     v.Unit,
	}
	if v.Display.Notation == Ceiling {
		whole := ceil(value)
		if whole < 1 {
			return Result{}, &Error{Kind: KindOutOfRange, Formula: f.ID, Variable: unknown, Reason: "solved to " + formatOperand(value)}
		}
		// A solved count must be accepted back as an input.
		if reason := v.Constraint.Check(whole); reason != "" {
			return Result{}, &Error{Kind: KindOutOfRange, Formula: f.ID, Variable: unknown, Reason: "solved to " + formatOperand(whole) + ", " + reason}
		}
		exact := value
		res.Value = whole
		res.Exact = &exact
	}
	res.Text = FormatValue(value, v.Display)
	res.Equation = r.Equation(ops, res.Text)

	return res, nil
}

func allPinned(f *Formula, names []string) bool {
	for _, n := range names {
		if !f.pinned(n) {
			return false
		}
	}
	return true
}
