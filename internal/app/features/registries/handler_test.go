package registries_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/features/registries"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}

	log := zap.NewNop()
	r := chi.NewRouter()
	r.Use(testutil.TenantMiddleware(db))
	r.Mount("/locations", registries.Routes(registries.Locations(nil, log)))
	r.Mount("/hosts", registries.Routes(registries.Hosts(nil, log)))
	r.Mount("/unknown-ips", registries.Routes(registries.UnknownIPs(nil, log)))
	return r
}

func serve(h http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLocations(t *testing.T) {
	h := newRouter(t)

	rec := serve(h, testutil.NewJSONRequest(t, "POST", "/locations", map[string]any{
		"name":        "kampala",
		"admin_level": "city",
		"isCustom":    true,
	}))
	rec.AssertStatus(t, http.StatusOK)
	var loc models.Location
	if err := json.Unmarshal(rec.Envelope(t).Data, &loc); err != nil {
		t.Fatalf("decode location: %v", err)
	}

	rec = serve(h, testutil.NewJSONRequest(t, "PUT", "/locations/"+loc.ID.Hex(), map[string]any{"long_name": "Kampala Capital City"}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Kampala Capital City")

	rec = serve(h, testutil.NewRequest("GET", "/locations?isCustom=true"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, loc.ID.Hex())

	rec = serve(h, testutil.NewRequest("DELETE", "/locations/"+loc.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	rec = serve(h, testutil.NewRequest("DELETE", "/locations/"+loc.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestHosts(t *testing.T) {
	h := newRouter(t)
	site := primitive.NewObjectID()

	host := map[string]any{
		"first_name":   "grace",
		"last_name":    "hopper",
		"email":        "Grace@Example.com",
		"phone_number": 256700000001,
		"site_id":      site.Hex(),
	}
	rec := serve(h, testutil.NewJSONRequest(t, "POST", "/hosts", host))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "grace@example.com")

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/hosts", host))
	rec.AssertStatus(t, http.StatusConflict)

	rec = serve(h, testutil.NewRequest("GET", "/hosts?phone_number=256700000001"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, site.Hex())

	rec = serve(h, testutil.NewJSONRequest(t, "PUT", "/hosts/"+primitive.NewObjectID().Hex(), map[string]any{"site_id": "bogus"}))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestUnknownIPs(t *testing.T) {
	h := newRouter(t)

	rec := serve(h, testutil.NewJSONRequest(t, "POST", "/unknown-ips", map[string]any{"ip": "203.0.113.5"}))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/unknown-ips", map[string]any{"ip": "203.0.113.5"}))
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "the ip must be unique")

	rec = serve(h, testutil.NewJSONRequest(t, "POST", "/unknown-ips", map[string]any{"ip": "not-an-ip"}))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(h, testutil.NewRequest("PUT", "/unknown-ips/xyz"))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Invalid ip_id xyz")
}
