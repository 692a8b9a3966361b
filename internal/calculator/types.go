package calculator

import (
	"encoding/json"
	"fmt"

	"labcalc/internal/solver"
)

// SolveRequest is the JSON body of POST /calculator/{formula}/solve.
//
// Each input is a JSON string, number or null. Numbers keep their literal
// text so the echoed equation shows them as typed.
type SolveRequest struct {
	Inputs    map[string]any `json:"inputs"`
	Compound  string         `json:"compound,omitempty"`
	Buffer    string         `json:"buffer,omitempty"`
	ProjectID string         `json:"project_id,omitempty"`
}

// request converts the decoded inputs into solver text. The body must be
// decoded with UseNumber.
func (s SolveRequest) request() (solver.Request, error) {
	out := make(solver.Request, len(s.Inputs))
	for name, raw := range s.Inputs {
		switch v := raw.(type) {
		case nil:
			out[name] = ""
		case string:
			out[name] = v
		case json.Number:
			out[name] = v.String()
		default:
			return nil, fmt.Errorf("input %q must be a string, number or null", name)
		}
	}
	return out, nil
}

// SolveResponse is the JSON response of a successful solve.
type SolveResponse struct {
	Formula   string   `json:"formula"`
	Variable  string   `json:"variable"`
	Label     string   `json:"label"`
	Value     float64  `json:"value"`
	Exact     *float64 `json:"exact,omitempty"`
	Text      string   `json:"text"`
	Unit      string   `json:"unit"`
	Equation  string   `json:"equation"`
	RecordID  string   `json:"record_id"`
	ProjectID string   `json:"project_id,omitempty"`
	RequestID string   `json:"request_id"`
}

// VariableInfo describes one variable of a formula in the catalog listing.
type VariableInfo struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Unit     string   `json:"unit"`
	Notation string   `json:"notation"`
	Places   int      `json:"places"`
	Solvable bool     `json:"solvable"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Integer  bool     `json:"integer,omitempty"`
}

// FormulaInfo describes a catalog formula.
type FormulaInfo struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	Calculator          string         `json:"calculator"`
	Relation            string         `json:"relation"`
	RequiredFilledCount int            `json:"required_filled_count"`
	Variables           []VariableInfo `json:"variables"`
}

func describe(f *solver.Formula) FormulaInfo {
	info := FormulaInfo{
		ID:                  f.ID,
		Name:                f.Name,
		Calculator:          f.Calculator,
		Relation:            f.Relation,
		RequiredFilledCount: f.RequiredFilledCount(),
		Variables:           make([]VariableInfo, 0, len(f.Variables)),
	}
	for _, v := range f.Variables {
		info.Variables = append(info.Variables, VariableInfo{
			Name:     v.Name,
			Label:    v.Label,
			Unit:     v.Unit,
			Notation: v.Display.Notation.String(),
			Places:   v.Display.Places,
			Solvable: f.Solvable(v.Name),
			Min:      v.Constraint.Min,
			Max:      v.Constraint.Max,
			Integer:  v.Constraint.Integer,
		})
	}
	return info
}
