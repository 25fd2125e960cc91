// internal/app/features/preferences/routes.go
package preferences

import "github.com/go-chi/chi/v5"

// Routes mounts the preference endpoints. PUT and DELETE on the root act
// on the preference selected by the query filter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Put("/upsert", h.HandleUpsert)
	r.Put("/", h.HandleUpdate)
	r.Delete("/", h.HandleDelete)
	return r
}
