// internal/app/features/users/users.go
package users

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	loginstore "github.com/dalemusser/accesshub/internal/app/store/logins"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/inputval"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// createBody is a user plus the plain password to hash. Memberships in
// the body are ignored.
type createBody struct {
	models.User
	Password string `json:"password"`
}

// ServeList lists users; group_id and network_id match memberships.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, ok := shared.Filter(w, filter.Users(filter.FromRequest(r)))
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	done := h.Metrics.Start("user.list")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list users")
	defer cancel()
	res := userstore.New(db).List(ctx, q, paging.Parse(r))
	done(res.Kind)
	respond.Result(w, res)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var body createBody
	if !shared.Decode(w, r, &body) {
		return
	}
	if !inputval.IsValidEmail(body.Email) {
		respond.BadRequest(w, "the email is not a valid email address")
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	u := body.User
	u.GroupRoles = nil
	u.NetworkRoles = nil
	u.LastLogin = nil

	done := h.Metrics.Start("user.create")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create user")
	defer cancel()
	res := userstore.New(db).Create(ctx, u, body.Password)
	done(res.Kind)
	if res.Success() {
		h.Log.Info("user created", zap.String("user_id", res.Data.ID.Hex()))
	}
	respond.Result(w, res)
}

// HandleUpdate modifies profile fields. Memberships are left untouched;
// they change only through the group and network endpoints.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "user_id")
	if !ok {
		return
	}
	update, ok := shared.Update(w, r)
	if !ok {
		return
	}
	if v, present := update["email"]; present {
		if s, _ := v.(string); !inputval.IsValidEmail(s) {
			respond.BadRequest(w, "the email is not a valid email address")
			return
		}
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	done := h.Metrics.Start("user.update")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update user")
	defer cancel()
	res := userstore.New(db).Update(ctx, bson.M{"_id": id}, update)
	done(res.Kind)
	respond.Result(w, res)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "user_id")
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	done := h.Metrics.Start("user.delete")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete user")
	defer cancel()
	res := userstore.New(db).Remove(ctx, bson.M{"_id": id})
	done(res.Kind)
	respond.Result(w, res)
}

// ServeLogins lists the user's recorded logins, newest first.
func (h *Handler) ServeLogins(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "user_id")
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list logins")
	defer cancel()
	recs, err := loginstore.New(db).Recent(ctx, id, paging.Parse(r))
	if err != nil {
		h.Log.Error("list logins failed", zap.Error(err), zap.String("user_id", id.Hex()))
		respond.Result(w, result.Internal[[]models.LoginRecord](err))
		return
	}
	respond.Result(w, result.OK("successfully retrieved the login history", recs))
}
