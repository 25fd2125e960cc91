// internal/app/features/requests/requests.go
package requests

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
)

type createBody struct {
	Email string `json:"email"`
}

type decideBody struct {
	Status string `json:"status"`
}

// ServeList lists requests filtered by targetId, requestType, status or
// email.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, ok := shared.Filter(w, filter.AccessRequests(filter.FromRequest(r)))
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list access requests")
	defer cancel()
	respond.Result(w, svc.List(ctx, q, paging.Parse(r)))
}

// create files a pending request for the body's email, or for the
// caller's email when the body has none.
func (h *Handler) create(requestType, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := shared.PathID(w, r, param)
		if !ok {
			return
		}
		var body createBody
		if !shared.Decode(w, r, &body) {
			return
		}
		if body.Email == "" {
			if u, ok := auth.CurrentUser(r); ok {
				body.Email = u.Email
			}
		}
		svc, ok := h.service(w, r)
		if !ok {
			return
		}
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create access request")
		defer cancel()
		respond.Result(w, svc.Create(ctx, requestType, target, body.Email))
	}
}

// HandleDecide approves or rejects a pending request.
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "request_id")
	if !ok {
		return
	}
	var body decideBody
	if !shared.Decode(w, r, &body) {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "decide access request")
	defer cancel()
	respond.Result(w, svc.Decide(ctx, id, body.Status))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "request_id")
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete access request")
	defer cancel()
	respond.Result(w, svc.Delete(ctx, id))
}
