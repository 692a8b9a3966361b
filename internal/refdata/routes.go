package refdata

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"labcalc/internal/handlers"
	"labcalc/internal/observability"
)

// KindUnknownReference is the error kind of a missing compound or buffer.
const KindUnknownReference = "unknown_reference"

// RegisterRoutes mounts the reference lookups under /reference.
func (t *Table) RegisterRoutes(r chi.Router) {
	r.Route("/reference", func(r chi.Router) {
		r.Get("/compounds", t.listCompounds)
		r.Get("/compounds/{key}", t.getCompound)
		r.Get("/buffers", t.listBuffers)
		r.Get("/buffers/{key}", t.getBuffer)
	})
}

// listCompounds handles GET /reference/compounds?q=&grouped=true
func (t *Table) listCompounds(w http.ResponseWriter, r *http.Request) {
	found := t.SearchCompounds(r.URL.Query().Get("q"))
	if r.URL.Query().Get("grouped") == "true" {
		handlers.WriteJSON(w, http.StatusOK, map[string]any{"categories": Categories(found)})
		return
	}
	if found == nil {
		found = []Compound{}
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"compounds": found})
}

func (t *Table) getCompound(w http.ResponseWriter, r *http.Request) {
	c, err := t.LookupCompound(chi.URLParam(r, "key"))
	if err != nil {
		observability.WriteError(r.Context(), w, http.StatusNotFound, KindUnknownReference, err.Error())
		return
	}
	handlers.WriteJSON(w, http.StatusOK, c)
}

func (t *Table) listBuffers(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"buffers": t.Buffers()})
}

func (t *Table) getBuffer(w http.ResponseWriter, r *http.Request) {
	b, err := t.LookupBuffer(chi.URLParam(r, "key"))
	if err != nil {
		observability.WriteError(r.Context(), w, http.StatusNotFound, KindUnknownReference, err.Error())
		return
	}
	handlers.WriteJSON(w, http.StatusOK, b)
}
