// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/features/shared"
	"github.com/dalemusser/accesshub/internal/app/store/audit"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxLimit = 500

// ServeList handles GET /audit. Filters: target_id, user_id, category,
// event_type, since (RFC 3339) and limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f, ok := parseFilter(w, r)
	if !ok {
		return
	}
	db, ok := shared.TenantDB(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := audit.New(db).Query(ctx, f)
	if err != nil {
		h.Log.Error("audit query failed", zap.Error(err))
		respond.Result(w, result.Internal[[]audit.Event](err))
		return
	}
	respond.Result(w, result.OK("successfully retrieved the audit events", events))
}

func parseFilter(w http.ResponseWriter, r *http.Request) (audit.QueryFilter, bool) {
	var f audit.QueryFilter
	for key, dst := range map[string]**primitive.ObjectID{"target_id": &f.TargetID, "user_id": &f.UserID} {
		raw := strings.TrimSpace(query.Get(r, key))
		if raw == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.BadRequest(w, "Invalid "+key+" "+raw)
			return f, false
		}
		*dst = &oid
	}
	f.Category = strings.TrimSpace(query.Get(r, "category"))
	f.EventType = strings.TrimSpace(query.Get(r, "event_type"))

	if raw := strings.TrimSpace(query.Get(r, "since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respond.BadRequest(w, "the since value must be an RFC 3339 timestamp")
			return f, false
		}
		f.Since = &since
	}
	if raw := strings.TrimSpace(query.Get(r, "limit")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			respond.BadRequest(w, "the limit must be a positive number")
			return f, false
		}
		f.Limit = min(n, maxLimit)
	}
	return f, true
}
