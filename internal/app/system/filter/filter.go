// Package filter turns request parameters into MongoDB predicates, one
// builder per entity type. Builders never touch the database; an id that
// does not parse yields a validation Result.
package filter

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Values is the flattened set of request parameters a builder reads.
type Values map[string]string

// FromRequest collects the trimmed query values of r and then overlays
// the named chi path parameters.
func FromRequest(r *http.Request, params ...string) Values {
	v := Values{}
	for key := range r.URL.Query() {
		if s := query.Get(r, key); s != "" {
			v[key] = s
		}
	}
	for _, p := range params {
		if s := chi.URLParam(r, p); s != "" {
			v[p] = s
		}
	}
	return v
}

// Result is a built predicate.
type Result = result.Result[bson.M]

// builder accumulates predicates and remembers the first bad id.
type builder struct {
	v    Values
	m    bson.M
	fail *Result
}

func newBuilder(v Values) *builder {
	return &builder{v: v, m: bson.M{}}
}

func (b *builder) first(keys ...string) (string, string) {
	for _, k := range keys {
		if s := b.v[k]; s != "" {
			return k, s
		}
	}
	return "", ""
}

// id sets field to the ObjectID found under the first present key.
func (b *builder) id(field string, keys ...string) {
	if b.fail != nil {
		return
	}
	key, raw := b.first(keys...)
	if raw == "" {
		return
	}
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		r := result.BadRequest[bson.M]("Invalid " + key + " " + raw)
		b.fail = &r
		return
	}
	b.m[field] = oid
}

func (b *builder) str(field string, fn func(string) string, keys ...string) {
	if _, raw := b.first(keys...); raw != "" {
		b.m[field] = fn(raw)
	}
}

func (b *builder) boolean(field string, keys ...string) {
	if _, raw := b.first(keys...); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			b.m[field] = v
		}
	}
}

func (b *builder) done() Result {
	if b.fail != nil {
		return *b.fail
	}
	return result.OK("filter built", b.m)
}

// Groups builds the predicate for the groups collection.
func Groups(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "grp_id", "id")
	b.str("grp_title_ci", text.Fold, "grp_title")
	b.str("grp_status", normalize.Status, "grp_status")
	b.id("grp_manager", "grp_manager")
	return b.done()
}

// Networks builds the predicate for the networks collection.
func Networks(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "net_id", "id")
	b.str("net_name_ci", text.Fold, "net_name")
	b.str("net_acronym", normalize.Name, "net_acronym")
	b.str("net_status", normalize.Status, "net_status")
	b.id("net_manager", "net_manager")
	return b.done()
}

// Users builds the predicate for the users collection.
func Users(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "user_id", "id")
	b.str("email", normalize.Email, "email")
	b.str("userName", normalize.Name, "userName", "username")
	b.str("status", normalize.Status, "status")
	b.boolean("isActive", "isActive", "active")
	b.id("group_roles.group", "group_id")
	b.id("network_roles.network", "network_id")
	return b.done()
}

// Roles builds the predicate for the roles collection.
func Roles(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "role_id", "id")
	b.str("role_name", normalize.Name, "role_name")
	b.str("role_code", normalize.Name, "role_code")
	b.str("role_status", normalize.Status, "role_status")
	b.id("group_id", "group_id", "grp_id")
	b.id("network_id", "network_id", "net_id")
	return b.done()
}

// Permissions builds the predicate for the permissions collection.
func Permissions(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "permission_id", "id")
	b.str("permission", normalize.PermissionName, "permission")
	b.id("group_id", "group_id")
	b.id("network_id", "network_id")
	return b.done()
}

// Preferences builds the predicate for the preferences collection.
func Preferences(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "preference_id", "id")
	b.id("user_id", "user_id")
	b.id("group_id", "group_id")
	b.id("network_id", "network_id")
	return b.done()
}

// Locations builds the predicate for the locations collection.
func Locations(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "location_id", "id")
	b.str("name", normalize.Name, "name")
	b.str("admin_level", normalize.Status, "admin_level")
	b.boolean("isCustom", "isCustom")
	return b.done()
}

// Hosts builds the predicate for the hosts collection.
func Hosts(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "host_id", "id")
	b.str("email", normalize.Email, "email")
	b.id("site_id", "site_id")
	if raw := v["phone_number"]; raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			b.m["phone_number"] = n
		}
	}
	return b.done()
}

// UnknownIPs builds the predicate for the unknown_ips collection.
func UnknownIPs(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "ip_id", "id")
	b.str("ip", normalize.Name, "ip")
	return b.done()
}

// AccessRequests builds the predicate for the access_requests collection.
func AccessRequests(v Values) Result {
	b := newBuilder(v)
	b.id("_id", "request_id", "id")
	b.id("user_id", "user_id")
	b.str("email", normalize.Email, "email")
	b.id("targetId", "targetId")
	b.str("requestType", normalize.Status, "requestType")
	b.str("status", normalize.Status, "status")
	return b.done()
}
