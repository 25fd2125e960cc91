// internal/app/features/shared/request.go

// Package shared holds the request plumbing every JSON feature uses. Each
// helper writes the 400 envelope itself and reports false when the
// handler should stop.
package shared

import (
	"net/http"

	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/inputval"
	"github.com/dalemusser/accesshub/internal/app/system/respond"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TenantDB returns the database of the request's tenant.
func TenantDB(w http.ResponseWriter, r *http.Request) (*mongo.Database, bool) {
	info := tenant.FromRequest(r)
	if info == nil || info.DB == nil {
		respond.BadRequest(w, "the tenant value is not among the expected ones")
		return nil, false
	}
	return info.DB, true
}

// PathID parses the chi path parameter name as an ObjectID.
func PathID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, name)
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		respond.BadRequest(w, "Invalid "+name+" "+raw)
		return primitive.NilObjectID, false
	}
	return oid, true
}

// Decode reads the JSON body into dst.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := inputval.DecodeJSON(r, dst); err != nil {
		respond.BadRequest(w, err.Error())
		return false
	}
	return true
}

// IDs parses a non-empty list of hex ids sent under field.
func IDs(w http.ResponseWriter, field string, raw []string) ([]primitive.ObjectID, bool) {
	if len(raw) == 0 {
		respond.BadRequest(w, "the "+field+" should not be empty")
		return nil, false
	}
	ids, bad, ok := inputval.ObjectIDs(raw)
	if !ok {
		respond.BadRequest(w, "Invalid "+field+" value "+bad)
		return nil, false
	}
	return ids, true
}

// Filter unwraps a built predicate, writing its failure envelope.
func Filter(w http.ResponseWriter, res filter.Result) (bson.M, bool) {
	if !res.Success() {
		respond.Result(w, res)
		return nil, false
	}
	return res.Data, true
}

// Update decodes a partial document for a Modify call. idFields hold hex
// strings that are stored as ObjectIDs.
func Update(w http.ResponseWriter, r *http.Request, idFields ...string) (bson.M, bool) {
	var m map[string]any
	if !Decode(w, r, &m) {
		return nil, false
	}
	delete(m, "_id")
	if len(m) == 0 {
		respond.BadRequest(w, "the request body has no fields to update")
		return nil, false
	}
	if key, ok := inputval.IDFields(m, idFields...); !ok {
		respond.BadRequest(w, "Invalid "+key+" value")
		return nil, false
	}
	return bson.M(m), true
}

// ActorID returns the explicit user id when given, else the caller's id.
// It returns nil when neither is known.
func ActorID(w http.ResponseWriter, r *http.Request, explicit string) (*primitive.ObjectID, bool) {
	if explicit != "" {
		oid, err := primitive.ObjectIDFromHex(explicit)
		if err != nil {
			respond.BadRequest(w, "Invalid user_id "+explicit)
			return nil, false
		}
		return &oid, true
	}
	if u, ok := auth.CurrentUser(r); ok {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			return &oid, true
		}
	}
	return nil, true
}
