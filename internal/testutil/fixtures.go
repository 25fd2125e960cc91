package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test documents directly, bypassing stores and services.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateUser inserts an active user with no memberships. The password, if
// any, is stored as a bcrypt hash.
func (f *Fixtures) CreateUser(ctx context.Context, email, password string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FirstName:    "Test",
		LastName:     "User",
		UserName:     normalize.Email(email),
		Email:        normalize.Email(email),
		IsActive:     true,
		Status:       models.StatusActive,
		GroupRoles:   []models.GroupRole{},
		NetworkRoles: []models.NetworkRole{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			f.t.Fatalf("hash password: %v", err)
		}
		u.Password = string(hash)
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateGroup inserts an active group with the given title.
func (f *Fixtures) CreateGroup(ctx context.Context, title string) models.Group {
	f.t.Helper()
	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "groups", g)
	return g
}

// CreateNetwork inserts an active network whose acronym equals its name.
func (f *Fixtures) CreateNetwork(ctx context.Context, name string) models.Network {
	f.t.Helper()
	now := time.Now().UTC()
	n := models.Network{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Acronym:   text.Fold(name),
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "networks", n)
	return n
}

// CreatePermission inserts a permission with an already normalized name.
func (f *Fixtures) CreatePermission(ctx context.Context, name string) models.Permission {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Permission{
		ID:          primitive.NewObjectID(),
		Permission:  name,
		Description: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "permissions", p)
	return p
}

// CreateGroupRole inserts a role scoped to groupID.
func (f *Fixtures) CreateGroupRole(ctx context.Context, groupID primitive.ObjectID, name string, perms ...primitive.ObjectID) models.Role {
	f.t.Helper()
	now := time.Now().UTC()
	if perms == nil {
		perms = []primitive.ObjectID{}
	}
	r := models.Role{
		ID:          primitive.NewObjectID(),
		Code:        name,
		Name:        name,
		Status:      models.StatusActive,
		GroupID:     &groupID,
		Permissions: perms,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "roles", r)
	return r
}

// AddGroupRole appends a group_roles entry to the user document directly.
func (f *Fixtures) AddGroupRole(ctx context.Context, userID primitive.ObjectID, entry models.GroupRole) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateByID(ctx, userID,
		bson.M{"$push": bson.M{"group_roles": entry}})
	if err != nil {
		f.t.Fatalf("add group role: %v", err)
	}
}

// AddNetworkRole appends a network_roles entry to the user document directly.
func (f *Fixtures) AddNetworkRole(ctx context.Context, userID primitive.ObjectID, entry models.NetworkRole) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateByID(ctx, userID,
		bson.M{"$push": bson.M{"network_roles": entry}})
	if err != nil {
		f.t.Fatalf("add network role: %v", err)
	}
}

// CreateAccessRequest inserts a pending group access request for email.
func (f *Fixtures) CreateAccessRequest(ctx context.Context, email string, userID *primitive.ObjectID, groupID primitive.ObjectID) models.AccessRequest {
	f.t.Helper()
	now := time.Now().UTC()
	a := models.AccessRequest{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Email:       normalize.Email(email),
		TargetID:    groupID,
		RequestType: "group",
		Status:      models.AccessPending,
		Token:       primitive.NewObjectID().Hex(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "access_requests", a)
	return a
}
