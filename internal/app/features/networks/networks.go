// internal/app/features/networks/networks.go
package networks

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/services/provisioning"
	networkstore "github.com/dalemusser/accesshub/internal/app/store/networks"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
)

type createBody struct {
	models.Network
	UserID string `json:"user_id"`
}

type findBody struct {
	Email string `json:"net_email"`
}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, filter.Networks(filter.FromRequest(r)))
}

func (h *Handler) ServeNetwork(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, filter.Networks(filter.FromRequest(r, "net_id")))
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list networks")
	defer cancel()
	respond.Result(w, networkstore.New(db).List(ctx, q, paging.Parse(r)))
}

// HandleCreate provisions a network named after its company email domain.
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
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create network")
	defer cancel()

	svc := provisioning.New(db, h.SuperAdminPermissions, h.Log, h.Audit, h.Metrics)
	respond.Result(w, svc.CreateNetwork(ctx, body.Network, creator))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "net_id")
	if !ok {
		return
	}
	update, ok := shared.Update(w, r, "net_manager")
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update network")
	defer cancel()
	respond.Result(w, networkstore.New(db).Update(ctx, bson.M{"_id": id}, update))
}

// HandleDelete answers 501 while network deletion is disabled.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const msg = "Network deletion temporarily disabled"
	respond.Result(w, result.Fail[any](result.KindNotImplemented, msg, result.Errors{"message": msg}))
}

// HandleSetManager makes a member the network's manager.
func (h *Handler) HandleSetManager(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "net_id")
	if !ok {
		return
	}
	userID, ok := shared.PathID(w, r, "user_id")
	if !ok {
		return
	}
	svc, ok := h.membership(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set network manager")
	defer cancel()
	respond.Result(w, svc.SetNetworkManager(ctx, id, userID))
}

// HandleRefresh prunes dangling network entries and reports the members.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, "net_id")
	if !ok {
		return
	}
	svc, ok := h.membership(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "refresh network")
	defer cancel()
	respond.Result(w, svc.RefreshNetwork(ctx, id))
}

// HandleFind resolves the network of a company email.
func (h *Handler) HandleFind(w http.ResponseWriter, r *http.Request) {
	var body findBody
	if !shared.Decode(w, r, &body) {
		return
	}
	if body.Email == "" {
		respond.BadRequest(w, "the net_email is required")
		return
	}
	svc, ok := h.membership(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "find network")
	defer cancel()
	respond.Result(w, svc.NetworkFromEmail(ctx, body.Email))
}
