// internal/app/features/roles/roles.go
package roles

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

type permissionsBody struct {
	Permissions []string `json:"permissions"`
}

// ServeList lists roles with their permissions expanded.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, ok := shared.Filter(w, filter.Roles(filter.FromRequest(r)))
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list roles")
	defer cancel()
	respond.Result(w, svc.ListRoles(ctx, q, paging.Parse(r)))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var role models.Role
	if !shared.Decode(w, r, &role) {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create role")
	defer cancel()
	respond.Result(w, svc.CreateRole(ctx, role))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "role_id")
	if !ok {
		return
	}
	update, ok := shared.Update(w, r)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update role")
	defer cancel()
	respond.Result(w, svc.UpdateRole(ctx, bson.M{"_id": id}, update))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "role_id")
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "delete role")
	defer cancel()
	respond.Result(w, svc.DeleteRole(ctx, id))
}

// HandleAssignPermissions grants the listed permissions to the role.
func (h *Handler) HandleAssignPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "role_id")
	if !ok {
		return
	}
	var body permissionsBody
	if !shared.Decode(w, r, &body) {
		return
	}
	perms, ok := shared.IDs(w, "permissions", body.Permissions)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "assign role permissions")
	defer cancel()
	respond.Result(w, svc.AssignPermissionsToRole(ctx, id, perms))
}

func (h *Handler) HandleUnassignPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "role_id")
	if !ok {
		return
	}
	permID, ok := shared.PathID(w, r, "permission_id")
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "unassign role permission")
	defer cancel()
	respond.Result(w, svc.UnassignPermissionFromRole(ctx, id, permID))
}
