package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"labcalc/internal/calculator"
	"labcalc/internal/handlers"
	"labcalc/internal/history"
	"labcalc/internal/observability"
	"labcalc/internal/projects"
	"labcalc/internal/refdata"
	"labcalc/internal/solver"
)

// Deps are the domain services the router exposes.
type Deps struct {
	Catalog   *solver.Catalog
	Reference *refdata.Table
	History   *history.Log
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.NewHandler(deps.Catalog, deps.Reference, deps.History).RegisterRoutes(r)
	deps.Reference.RegisterRoutes(r)
	projects.NewHandler(deps.History).RegisterRoutes(r)

	return r
}
