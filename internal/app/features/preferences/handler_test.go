package preferences_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/features/preferences"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
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
	r.Mount("/preferences", preferences.Routes(preferences.NewHandler(nil, zap.NewNop())))
	return r, testutil.NewFixtures(t, db)
}

func TestPreferenceLifecycle(t *testing.T) {
	h, fx := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	serve := func(req *http.Request) *testutil.ResponseRecorder {
		rec := testutil.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	u := fx.CreateUser(ctx, "dash@example.com", "")
	g := fx.CreateGroup(ctx, "Dash")

	rec := serve(testutil.NewJSONRequest(t, "POST", "/preferences", map[string]any{
		"user_id":   u.ID.Hex(),
		"group_id":  g.ID.Hex(),
		"pollutant": "pm2_5",
	}))
	rec.AssertStatus(t, http.StatusOK)

	site := primitive.NewObjectID()
	rec = serve(testutil.NewJSONRequest(t, "PUT", "/preferences/upsert", map[string]any{
		"user_id":  u.ID.Hex(),
		"group_id": g.ID.Hex(),
		"site_ids": []string{site.Hex()},
	}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, site.Hex())
	rec.AssertContains(t, "pm2_5")

	rec = serve(testutil.NewJSONRequest(t, "PUT", "/preferences?user_id="+u.ID.Hex(), map[string]any{"frequency": "hourly"}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "hourly")

	rec = serve(testutil.NewRequest("GET", "/preferences?group_id="+g.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "hourly")

	rec = serve(testutil.NewRequest("DELETE", "/preferences?user_id="+u.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
}

func TestWritesNeedFilter(t *testing.T) {
	h, _ := newRouter(t)

	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest("DELETE", "/preferences"))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewJSONRequest(t, "PUT", "/preferences/upsert", map[string]any{"pollutant": "pm10"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest("GET", "/preferences?user_id=zzz"))
	rec.AssertStatus(t, http.StatusBadRequest)
}
