package projects

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the recent history under /history and projects under
// /projects.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.ListHistory)
		r.Delete("/{recordID}", h.RemoveFromHistory)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Delete("/", h.Delete)
			r.Delete("/calculations/{recordID}", h.RemoveCalculation)
			r.Get("/report.pdf", h.Report)
		})
	})
}
