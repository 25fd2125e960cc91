// internal/app/features/registries/routes.go
package registries

import "github.com/go-chi/chi/v5"

func Routes[T any](h *Handler[T]) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Put("/{"+h.Param+"}", h.HandleUpdate)
	r.Delete("/{"+h.Param+"}", h.HandleDelete)
	return r
}
