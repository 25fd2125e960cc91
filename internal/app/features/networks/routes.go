// internal/app/features/networks/routes.go
package networks

import "github.com/go-chi/chi/v5"

// Routes mounts the network endpoints, typically at /networks.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/find", h.HandleFind)

	r.Route("/{net_id}", func(nr chi.Router) {
		nr.Get("/", h.ServeNetwork)
		nr.Put("/", h.HandleUpdate)
		nr.Delete("/", h.HandleDelete)
		nr.Put("/set-manager/{user_id}", h.HandleSetManager)
		nr.Patch("/refresh", h.HandleRefresh)
		h.Members.Mount(nr)
	})

	return r
}
