package users_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/features/users"
	loginstore "github.com/dalemusser/accesshub/internal/app/store/logins"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}

	r := chi.NewRouter()
	r.Use(testutil.TenantMiddleware(db))
	r.Route("/users", users.NewHandler(nil, zap.NewNop()).Mount)
	return r, testutil.NewFixtures(t, db), db
}

func serve(h http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreate(t *testing.T) {
	h, fx, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	g := fx.CreateGroup(ctx, "Sneaky")

	rec := serve(h, testutil.NewJSONRequest(t, "POST", "/users", map[string]any{
		"firstName":   "ada",
		"lastName":    "lovelace",
		"email":       "Ada@Example.com",
		"password":    "analytical",
		"group_roles": []map[string]any{{"group": g.ID.Hex()}},
	}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertNotContains(t, "analytical")

	var created models.User
	if err := json.Unmarshal(rec.Envelope(t).Data, &created); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if created.Email != "ada@example.com" {
		t.Errorf("email: %q", created.Email)
	}
	stored, err := userstore.New(db).GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.GroupRoles) != 0 {
		t.Errorf("memberships accepted on create: %+v", stored.GroupRoles)
	}
	if _, err := userstore.New(db).Authenticate(ctx, "ada@example.com", "analytical"); err != nil {
		t.Errorf("password not usable: %v", err)
	}

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/users", map[string]any{"email": "ada@example.com"}))
	rec.AssertStatus(t, http.StatusConflict)

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/users", map[string]any{"email": "not an email"}))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestListByMembership(t *testing.T) {
	h, fx, _ := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Listed")
	in := fx.CreateUser(ctx, "in@example.com", "")
	fx.CreateUser(ctx, "out@example.com", "")
	fx.AddGroupRole(ctx, in.ID, models.GroupRole{Group: &g.ID})

	rec := serve(h, testutil.NewRequest("GET", "/users?group_id="+g.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "in@example.com")
	rec.AssertNotContains(t, "out@example.com")

	rec = serve(h, testutil.NewRequest("GET", "/users?group_id=nope"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUpdateAndDelete(t *testing.T) {
	h, fx, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Kept")
	u := fx.CreateUser(ctx, "edit@example.com", "")
	fx.AddGroupRole(ctx, u.ID, models.GroupRole{Group: &g.ID})

	rec := serve(h, testutil.NewJSONRequest(t, "PUT", "/users/"+u.ID.Hex(), map[string]any{
		"jobTitle":    "Engineer",
		"group_roles": []any{},
	}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Engineer")

	stored, _ := userstore.New(db).GetByID(ctx, u.ID)
	if !userstore.IsMember(stored, userstore.GroupScope, g.ID) {
		t.Error("update dropped memberships")
	}

	rec = serve(h, testutil.NewJSONRequest(t, "PUT", "/users/"+u.ID.Hex(), map[string]any{"email": "bad"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(h, testutil.NewRequest("DELETE", "/users/"+u.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec = serve(h, testutil.NewRequest("DELETE", "/users/"+u.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestLogins(t *testing.T) {
	h, _, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	if err := loginstore.New(db).Create(ctx, models.LoginRecord{UserID: id, IP: "198.51.100.7", Provider: loginstore.ProviderPassword}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := serve(h, testutil.NewRequest("GET", "/users/"+id.Hex()+"/logins"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "198.51.100.7")
}
