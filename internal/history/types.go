package history

import (
	"time"

	"github.com/google/uuid"

	"labcalc/internal/solver"
)

// Outcome is the solved value as recorded: the display text plus the number.
type Outcome struct {
	Variable string   `json:"variable"`
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	Unit     string   `json:"unit"`
	Numeric  float64  `json:"numeric"`
	Exact    *float64 `json:"exact,omitempty"`
}

// Record is an immutable audit entry of one successful solve.
type Record struct {
	ID          string            `json:"id"`
	Formula     string            `json:"formula"`
	FormulaName string            `json:"formula_name"`
	Inputs      map[string]string `json:"inputs"`
	Result      Outcome           `json:"result"`
	Equation    string            `json:"equation"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewRecord snapshots a solve into a Record stamped with at.
func NewRecord(f *solver.Formula, inputs solver.Request, res solver.Result, at time.Time) Record {
	snapshot := make(map[string]string, len(inputs))
	for k, v := range inputs {
		snapshot[k] = v
	}
	return Record{
		ID:          uuid.New().String(),
		Formula:     f.ID,
		FormulaName: f.Name,
		Inputs:      snapshot,
		Result: Outcome{
			Variable: res.Variable,
			Label:    res.Label,
			Value:    res.Text,
			Unit:     res.Unit,
			Numeric:  res.Value,
			Exact:    res.Exact,
		},
		Equation:  res.Equation,
		Timestamp: at.UTC(),
	}
}

// Project is a named, append-ordered collection of records.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Calculations []Record  `json:"calculations"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func copyRecords(in []Record) []Record {
	out := make([]Record, len(in))
	copy(out, in)
	return out
}

func (p Project) clone() Project {
	p.Calculations = copyRecords(p.Calculations)
	return p
}

// State is the persisted blob.
type State struct {
	Projects      []Project `json:"projects"`
	RecentHistory []Record  `json:"recent_history"`
}

func (s State) clone() State {
	out := State{
		Projects:      make([]Project, len(s.Projects)),
		RecentHistory: copyRecords(s.RecentHistory),
	}
	for i, p := range s.Projects {
		out.Projects[i] = p.clone()
	}
	return out
}
