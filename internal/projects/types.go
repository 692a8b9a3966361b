package projects

import (
	"time"

	"labcalc/internal/history"
)

// CreateRequest is the JSON body of POST /projects.
type CreateRequest struct {
	Name string `json:"name"`
}

// Summary is a project without its records, as listed by GET /projects.
type Summary struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	CalculationCount int       `json:"calculation_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func summarize(p history.Project) Summary {
	return Summary{
		ID:               p.ID,
		Name:             p.Name,
		CalculationCount: len(p.Calculations),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// HistoryResponse is the JSON response of GET /history, newest record first.
type HistoryResponse struct {
	Records []history.Record `json:"records"`
	Limit   int              `json:"limit"`
}

func newestFirst(records []history.Record) []history.Record {
	out := make([]history.Record, len(records))
	for i, r := range records {
		out[len(records)-1-i] = r
	}
	return out
}
