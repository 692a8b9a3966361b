package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the calculator endpoints under /calculator.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/formulas", h.ListFormulas)
		r.Get("/formulas/{formula}", h.GetFormula)
		r.Post("/{formula}/solve", h.Solve)
	})
}
