// internal/app/features/permissions/routes.go
package permissions

import "github.com/go-chi/chi/v5"

// Routes mounts the permission endpoints, typically at /permissions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Put("/{permission_id}", h.HandleUpdate)
	r.Delete("/{permission_id}", h.HandleDelete)
	return r
}
