// internal/app/features/members/members.go
package members

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
)

// userIDsBody is the body of the bulk endpoints.
type userIDsBody struct {
	UserIDs []string `json:"user_ids"`
}

// ServeAssigned lists the members of the entity with their role.
func (h *Handler) ServeAssigned(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, h.Scope.Name+" assigned users")
	defer cancel()
	respond.Result(w, svc.ListAssigned(ctx, h.Scope, id))
}

// ServeAvailable lists the users that are not members of the entity.
func (h *Handler) ServeAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, h.Scope.Name+" available users")
	defer cancel()
	respond.Result(w, svc.ListAvailable(ctx, h.Scope, id))
}

func (h *Handler) HandleAssignOne(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	userID, ok := shared.PathID(w, r, "user_id")
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, h.Scope.Name+" assign user")
	defer cancel()
	respond.Result(w, svc.AssignOne(ctx, h.Scope, id, userID))
}

func (h *Handler) HandleUnassignOne(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	userID, ok := shared.PathID(w, r, "user_id")
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, h.Scope.Name+" unassign user")
	defer cancel()
	respond.Result(w, svc.UnassignOne(ctx, h.Scope, id, userID))
}

// HandleAssignMany adds every listed user. Users that could not be
// assigned are reported per id next to the count of those that were.
func (h *Handler) HandleAssignMany(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	var body userIDsBody
	if !shared.Decode(w, r, &body) {
		return
	}
	userIDs, ok := shared.IDs(w, "user_ids", body.UserIDs)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, h.Scope.Name+" assign users")
	defer cancel()
	respond.Result(w, svc.AssignMany(ctx, h.Scope, id, userIDs))
}

// HandleUnassignMany removes every listed user, or none of them when any
// is not a member.
func (h *Handler) HandleUnassignMany(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.PathID(w, r, h.Param)
	if !ok {
		return
	}
	var body userIDsBody
	if !shared.Decode(w, r, &body) {
		return
	}
	userIDs, ok := shared.IDs(w, "user_ids", body.UserIDs)
	if !ok {
		return
	}
	svc, ok := h.service(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, h.Scope.Name+" unassign users")
	defer cancel()
	respond.Result(w, svc.UnassignMany(ctx, h.Scope, id, userIDs))
}
