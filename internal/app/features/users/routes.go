// internal/app/features/users/routes.go
package users

import "github.com/go-chi/chi/v5"

// Mount registers the user endpoints on r. They share their root with the
// other /users features, so they are mounted in place rather than as a
// sub-router.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Put("/{user_id}", h.HandleUpdate)
	r.Delete("/{user_id}", h.HandleDelete)
	r.Get("/{user_id}/logins", h.ServeLogins)
}
