package solver

// Operands are the supplied values of a solve call, parsed and as given.
type Operands struct {
	values map[string]float64
	raw    map[string]string
}

// Value returns the parsed value of name.
func (o Operands) Value(name string) float64 { return o.values[name] }

// Raw returns the text of name exactly as supplied.
func (o Operands) Raw(name string) string { return o.raw[name] }

// Rearrangement is the closed-form inverse of a relation for one variable.
type Rearrangement struct {
	// Solve computes the unknown from the other values.
	Solve func(o Operands) float64
	// Equation renders the substituted relation; result is the formatted
	// solved value.
	Equation func(o Operands, result string) string
}

// Formula is a named algebraic relation over an ordered set of variables.
type Formula struct {
	ID         string
	Name       string
	Calculator string
	Relation   string
	Variables  []Variable
	// Pinned variables must always be supplied; they have no inverse.
	Pinned []string

	rearrangements map[string]Rearrangement
}

// Arity is the number of variables of the relation.
func (f *Formula) Arity() int { return len(f.Variables) }

// RequiredFilledCount is how many values must be supplied to solve.
func (f *Formula) RequiredFilledCount() int { return len(f.Variables) - 1 }

// Variable returns the variable called name.
func (f *Formula) Variable(name string) (Variable, bool) {
	for _, v := range f.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// HasVariable reports whether name is a variable of f.
func (f *Formula) HasVariable(name string) bool {
	_, ok := f.Variable(name)
	return ok
}

// Solvable reports whether name can be the unknown of a solve call.
func (f *Formula) Solvable(name string) bool {
	_, ok := f.rearrangements[name]
	return ok
}

func (f *Formula) pinned(name string) bool {
	for _, p := range f.Pinned {
		if p == name {
			return true
		}
	}
	return false
}
