// internal/app/features/preferences/preferences.go
package preferences

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

// idFields are the update keys holding ObjectIDs.
var idFields = []string{"user_id", "group_id", "network_id"}

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, ok := shared.Filter(w, filter.Preferences(filter.FromRequest(r)))
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list preferences")
	defer cancel()
	respond.Result(w, svc.List(ctx, q, paging.Parse(r)))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var p models.Preference
	if !shared.Decode(w, r, &p) {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create preference")
	defer cancel()
	respond.Result(w, svc.Create(ctx, p))
}

// HandleUpsert merges the body into the preference selected by the query
// filter, or by the body's user_id and group_id when the query has none.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	q, ok := shared.Filter(w, filter.Preferences(filter.FromRequest(r)))
	if !ok {
		return
	}
	var p models.Preference
	if !shared.Decode(w, r, &p) {
		return
	}
	if len(q) == 0 {
		if p.UserID.IsZero() {
			respond.BadRequest(w, "the user_id is required")
			return
		}
		q = bson.M{"user_id": p.UserID}
		if p.GroupID != nil {
			q["group_id"] = *p.GroupID
		}
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "upsert preference")
	defer cancel()
	respond.Result(w, svc.Upsert(ctx, q, p))
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	q, ok := h.selector(w, r)
	if !ok {
		return
	}
	update, ok := shared.Update(w, r, idFields...)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update preference")
	defer cancel()
	respond.Result(w, svc.Update(ctx, q, update))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	q, ok := h.selector(w, r)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete preference")
	defer cancel()
	respond.Result(w, svc.Delete(ctx, q))
}

// selector is the query filter of a write. An empty filter would select
// an arbitrary document, so it is rejected.
func (h *Handler) selector(w http.ResponseWriter, r *http.Request) (bson.M, bool) {
	q, ok := shared.Filter(w, filter.Preferences(filter.FromRequest(r)))
	if !ok {
		return nil, false
	}
	if len(q) == 0 {
		respond.BadRequest(w, "a preference_id, user_id, group_id or network_id filter is required")
		return nil, false
	}
	return q, true
}
