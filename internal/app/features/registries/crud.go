// internal/app/features/registries/crud.go
package registries

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
)

func (h *Handler[T]) ServeList(w http.ResponseWriter, r *http.Request) {
	q, ok := shared.Filter(w, h.Filter(filter.FromRequest(r)))
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	done := h.Metrics.Start(h.Noun + ".list")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list "+h.Noun)
	defer cancel()
	res := h.Open(db).List(ctx, q, paging.Parse(r))
	done(res.Kind)
	respond.Result(w, res)
}

func (h *Handler[T]) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var v T
	if !shared.Decode(w, r, &v) {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	done := h.Metrics.Start(h.Noun + ".create")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create "+h.Noun)
	defer cancel()
	res := h.Open(db).Create(ctx, v)
	done(res.Kind)
	respond.Result(w, res)
}

func (h *Handler[T]) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	update, ok := shared.Update(w, r, h.IDFields...)
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	done := h.Metrics.Start(h.Noun + ".update")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update "+h.Noun)
	defer cancel()
	res := h.Open(db).Update(ctx, bson.M{"_id": id}, update)
	done(res.Kind)
	respond.Result(w, res)
}

func (h *Handler[T]) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	done := h.Metrics.Start(h.Noun + ".delete")
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete "+h.Noun)
	defer cancel()
	res := h.Open(db).Remove(ctx, bson.M{"_id": id})
	done(res.Kind)
	respond.Result(w, res)
}
