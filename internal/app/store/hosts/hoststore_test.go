package hoststore_test

import (
	"testing"

	hoststore "github.com/dalemusser/accesshub/internal/app/store/hosts"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CompoundUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}
	store := hoststore.New(db)

	site := primitive.NewObjectID()
	h := models.Host{FirstName: "Ann", Email: "Ann@Host.org", PhoneNumber: 256700000001, SiteID: site}

	res := store.Create(ctx, h)
	if !res.Success() {
		t.Fatalf("Create failed: %+v", res)
	}
	if res.Data.Email != "ann@host.org" {
		t.Errorf("Email: got %q", res.Data.Email)
	}

	dup := store.Create(ctx, h)
	if dup.Kind != result.KindConflict {
		t.Fatalf("duplicate: got %v", dup.Kind)
	}
	for _, k := range []string{"email", "phone_number", "site_id"} {
		if dup.Errors[k] != "the "+k+" must be unique" {
			t.Errorf("errors[%s]: got %q", k, dup.Errors[k])
		}
	}

	other := h
	other.SiteID = primitive.NewObjectID()
	if res := store.Create(ctx, other); !res.Success() {
		t.Errorf("same contact on another site should be allowed: %+v", res)
	}

	if bad := store.Create(ctx, models.Host{Email: "x@y.z"}); bad.Kind != result.KindValidation {
		t.Errorf("missing site: got %v", bad.Kind)
	}
}
