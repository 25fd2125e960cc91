package permissions_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/features/permissions"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
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

	r := chi.NewRouter()
	r.Use(testutil.TenantMiddleware(db))
	r.Mount("/permissions", permissions.Routes(permissions.NewHandler(nil, nil, zap.NewNop())))
	return r, testutil.NewFixtures(t, db)
}

func TestLifecycle(t *testing.T) {
	h, _ := newRouter(t)

	serve := func(req *http.Request) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := serve(testutil.NewJSONRequest(t, "POST", "/permissions", map[string]any{
		"permission":  "view devices",
		"description": "read device list",
	}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "VIEW_DEVICES")

	rec = serve(testutil.NewJSONRequest(t, "POST", "/permissions", map[string]any{"permission": "View-Devices"}))
	rec.AssertStatus(t, http.StatusConflict)

	rec = serve(testutil.NewRequest("GET", "/permissions?permission=view%20devices"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "read device list")

	rec = serve(testutil.NewJSONRequest(t, "PUT", "/permissions/not-an-id", map[string]any{"description": "x"}))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestDelete(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreatePermission(ctx, "DOOMED")
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest("DELETE", "/permissions/"+p.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest("DELETE", "/permissions/"+p.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}
