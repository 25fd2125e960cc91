// internal/app/features/roles/routes.go
package roles

import "github.com/go-chi/chi/v5"

// Routes mounts the role endpoints, typically at /roles.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Put("/{role_id}", h.HandleUpdate)
	r.Delete("/{role_id}", h.HandleDelete)

	// grants
	r.Post("/{role_id}/permissions", h.HandleAssignPermissions)
	r.Delete("/{role_id}/permissions/{permission_id}", h.HandleUnassignPermission)

	return r
}
