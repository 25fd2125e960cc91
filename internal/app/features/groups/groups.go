// internal/app/features/groups/groups.go
package groups

import (
	"errors"
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/services/membership"
	"github.com/dalemusser/accesshub/internal/app/services/provisioning"
	groupstore "github.com/dalemusser/accesshub/internal/app/store/groups"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// createBody is a group plus the optional id of the user creating it.
// Without user_id the caller becomes the creator.
type createBody struct {
	models.Group
	UserID string `json:"user_id"`
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, filter.Groups(filter.FromRequest(r)))
}

// ServeGroup lists the group named by the path.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, filter.Groups(filter.FromRequest(r, "grp_id")))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, f filter.Result) {
	q, ok := shared.Filter(w, f)
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list groups")
	defer cancel()
	respond.Result(w, groupstore.New(db).List(ctx, q, paging.Parse(r)))
}

// HandleCreate provisions a group together with its SUPER_ADMIN role.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body createBody
	if !shared.Decode(w, r, &body) {
		return
	}
	creator, ok := shared.ActorID(w, r, body.UserID)
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create group")
	defer cancel()

	svc := provisioning.New(db, h.SuperAdminPermissions, h.Log, h.Audit, h.Metrics)
	respond.Result(w, svc.CreateGroup(ctx, body.Group, creator))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "grp_id")
	if !ok {
		return
	}
	update, ok := shared.Update(w, r, "grp_manager")
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update group")
	defer cancel()
	respond.Result(w, groupstore.New(db).Update(ctx, bson.M{"_id": id}, update))
}

// HandleDelete answers 501 while group deletion is disabled.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const msg = "Group deletion temporarily disabled"
	respond.Result(w, result.Fail[any](result.KindNotImplemented, msg, result.Errors{"message": msg}))
}

// ServeAllUsers lists the group's members and its pending invitees.
func (h *Handler) ServeAllUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "grp_id")
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list all group users")
	defer cancel()
	svc := membership.New(db, h.Log, h.Audit, h.Metrics)
	respond.Result(w, svc.ListAllGroupUsers(ctx, id))
}

// HandleDropWebsiteIndex removes the unique grp_website index older
// deployments carry.
func (h *Handler) HandleDropWebsiteIndex(w http.ResponseWriter, r *http.Request) {
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "drop grp_website index")
	defer cancel()

	err := indexes.DropLegacyGroupWebsite(ctx, db)
	switch {
	case errors.Is(err, indexes.ErrIndexNotFound):
		respond.Result(w, result.BadRequest[any]("Index removal failed, "+indexes.LegacyGroupWebsiteIndex+" does not exist"))
	case err != nil:
		h.Log.Error("drop grp_website index failed", zap.Error(err))
		respond.Result(w, result.Internal[any](err))
	default:
		respond.Result(w, result.Done[any]("Index dropped successfully"))
	}
}
