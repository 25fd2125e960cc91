package requests_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/features/requests"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"github.com/go-chi/chi/v5"
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
	r.Mount("/requests", requests.Routes(requests.NewHandler(nil, nil, zap.NewNop())))
	return r, testutil.NewFixtures(t, db), db
}

func serve(h http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestApproveFlow(t *testing.T) {
	h, fx, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Invites")
	u := fx.CreateUser(ctx, "joiner@example.com", "")

	rec := serve(h, testutil.NewJSONRequest(t, "POST", "/requests/groups/"+g.ID.Hex(), map[string]any{"email": "joiner@example.com"}))
	rec.AssertStatus(t, http.StatusOK)
	var req models.AccessRequest
	if err := json.Unmarshal(rec.Envelope(t).Data, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	rec.AssertNotContains(t, "token")

	rec = serve(h, testutil.NewRequest("GET", "/requests?status=pending&targetId="+g.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, req.ID.Hex())

	rec = serve(h, testutil.NewJSONRequest(t, "PUT", "/requests/"+req.ID.Hex(), map[string]any{"status": "approved"}))
	rec.AssertStatus(t, http.StatusOK)

	stored, _ := userstore.New(db).GetByID(ctx, u.ID)
	if !userstore.IsMember(stored, userstore.GroupScope, g.ID) {
		t.Error("approval did not assign the user")
	}

	rec = serve(h, testutil.NewJSONRequest(t, "PUT", "/requests/"+req.ID.Hex(), map[string]any{"status": "rejected"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(h, testutil.NewRequest("DELETE", "/requests/"+req.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
}

func TestRequestForCallerAndValidation(t *testing.T) {
	h, fx, _ := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNetwork(ctx, "Airqo")

	caller := testutil.Caller(nil)
	req := testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/requests/networks/"+n.ID.Hex(), map[string]any{}), caller)
	rec := serve(h, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, caller.Email)

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/requests/networks/"+n.ID.Hex(), map[string]any{}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/requests/groups/zzz", map[string]any{"email": "a@b.co"}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Invalid grp_id zzz")

	rec = serve(h, testutil.NewJSONRequest(t, "PUT", "/requests/"+n.ID.Hex(), map[string]any{"status": "maybe"}))
	rec.AssertStatus(t, http.StatusBadRequest)
}
