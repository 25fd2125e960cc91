// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes mounts the group endpoints, typically at /groups.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	// maintenance
	r.Delete("/indexes/website", h.HandleDropWebsiteIndex)

	r.Route("/{grp_id}", func(gr chi.Router) {
		gr.Get("/", h.ServeGroup)
		gr.Put("/", h.HandleUpdate)
		gr.Delete("/", h.HandleDelete)
		gr.Get("/all-users", h.ServeAllUsers)
		h.Members.Mount(gr)
	})

	return r
}
