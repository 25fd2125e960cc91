package networks_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/features/networks"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}

	h := networks.NewHandler([]string{"CREATE_USER"}, nil, nil, zap.NewNop())
	r := chi.NewRouter()
	r.Use(testutil.TenantMiddleware(db))
	r.Mount("/networks", networks.Routes(h))
	return r, testutil.NewFixtures(t, db)
}

func serve(h http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndFind(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateUser(ctx, "lead@airqo.net", "")
	rec := serve(h, testutil.NewJSONRequest(t, "POST", "/networks", map[string]any{
		"net_email":   "info@airqo.net",
		"net_website": "https://airqo.net",
		"user_id":     creator.ID.Hex(),
	}))
	rec.AssertStatus(t, http.StatusOK)
	var n models.Network
	if err := json.Unmarshal(rec.Envelope(t).Data, &n); err != nil {
		t.Fatalf("decode network: %v", err)
	}
	if n.Name != "airqo" {
		t.Errorf("name: %q", n.Name)
	}

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/networks/find", map[string]any{"net_email": "someone@airqo.net"}))
	rec.AssertStatus(t, http.StatusOK)
	if env := rec.Envelope(t); string(env.Data) != `"airqo"` {
		t.Errorf("find: %+v", env)
	}

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/networks/find", map[string]any{"net_email": "someone@gmail.com"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/networks/find", map[string]any{}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "the net_email is required")
}

func TestSetManagerAndRefresh(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNetwork(ctx, "AirQo")
	member := fx.CreateUser(ctx, "member@airqo.net", "")
	outsider := fx.CreateUser(ctx, "outsider@airqo.net", "")
	fx.AddNetworkRole(ctx, member.ID, models.NetworkRole{Network: &n.ID, UserType: models.UserTypeGuest})
	base := "/networks/" + n.ID.Hex()

	rec := serve(h, testutil.NewRequest("PUT", base+"/set-manager/"+outsider.ID.Hex()))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "not authorized to manage this network")

	rec = serve(h, testutil.NewRequest("PUT", base+"/set-manager/"+member.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "member@airqo.net")

	rec = serve(h, testutil.NewRequest("PATCH", base+"/refresh"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, member.ID.Hex())
}

func TestDelete_NotImplemented(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNetwork(ctx, "Kept")
	rec := serve(h, testutil.NewRequest("DELETE", "/networks/"+n.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotImplemented)
}

func TestListFilters(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateNetwork(ctx, "One")
	fx.CreateNetwork(ctx, "Two")

	rec := serve(h, testutil.NewRequest("GET", "/networks?net_acronym=two"))
	rec.AssertStatus(t, http.StatusOK)
	var listed []models.Network
	if err := json.Unmarshal(rec.Envelope(t).Data, &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("filtered list: got %d", len(listed))
	}

	rec = serve(h, testutil.NewRequest("GET", "/networks/nope"))
	rec.AssertStatus(t, http.StatusBadRequest)
}
