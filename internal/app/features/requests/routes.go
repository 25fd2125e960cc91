// internal/app/features/requests/routes.go
package requests

import (
	accessrequeststore "github.com/dalemusser/accesshub/internal/app/store/accessrequests"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/groups/{grp_id}", h.create(accessrequeststore.TypeGroup, "grp_id"))
	r.Post("/networks/{net_id}", h.create(accessrequeststore.TypeNetwork, "net_id"))
	r.Put("/{request_id}", h.HandleDecide)
	r.Delete("/{request_id}", h.HandleDelete)
	return r
}
