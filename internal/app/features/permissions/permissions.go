// internal/app/features/permissions/permissions.go
package permissions

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, ok := shared.Filter(w, filter.Permissions(filter.FromRequest(r)))
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list permissions")
	defer cancel()
	respond.Result(w, svc.ListPermissions(ctx, q, paging.Parse(r)))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p models.Permission
	if !shared.Decode(w, r, &p) {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create permission")
	defer cancel()
	respond.Result(w, svc.CreatePermission(ctx, p))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "permission_id")
	if !ok {
		return
	}
	update, ok := shared.Update(w, r, "group_id", "network_id")
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update permission")
	defer cancel()
	respond.Result(w, svc.UpdatePermission(ctx, bson.M{"_id": id}, update))
}

// HandleDelete removes the permission and revokes it from every role.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "permission_id")
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "delete permission")
	defer cancel()
	respond.Result(w, svc.DeletePermission(ctx, id))
}
