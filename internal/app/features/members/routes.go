// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// Mount registers the membership routes on r, which must already carry
// the scope's id parameter in its pattern, e.g. "/{grp_id}".
//
//	GET    /assigned-users
//	GET    /available-users
//	POST   /assign-users
//	PUT    /assign-user/{user_id}   (POST accepted)
//	DELETE /unassign-user/{user_id}
//	DELETE /unassign-many-users
func (h *Handler) Mount(r chi.Router) {
	r.Get("/assigned-users", h.ServeAssigned)
	r.Get("/available-users", h.ServeAvailable)
	r.Post("/assign-users", h.HandleAssignMany)
	r.Put("/assign-user/{user_id}", h.HandleAssignOne)
	r.Post("/assign-user/{user_id}", h.HandleAssignOne)
	r.Delete("/unassign-user/{user_id}", h.HandleUnassignOne)
	r.Delete("/unassign-many-users", h.HandleUnassignMany)
}
