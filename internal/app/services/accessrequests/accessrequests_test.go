package accessrequests_test

import (
	"testing"

	"github.com/dalemusser/accesshub/internal/app/services/accessrequests"
	accessrequeststore "github.com/dalemusser/accesshub/internal/app/store/accessrequests"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*accessrequests.Service, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}
	return accessrequests.New(db, zap.NewNop(), nil, nil), testutil.NewFixtures(t, db), db
}

func TestCreate(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Invites")
	u := fx.CreateUser(ctx, "known@example.com", "")

	res := svc.Create(ctx, accessrequeststore.TypeGroup, g.ID, " Known@Example.com ")
	if !res.Success() {
		t.Fatalf("Create: %+v", res)
	}
	if res.Data.Status != models.AccessPending || res.Data.UserID == nil || *res.Data.UserID != u.ID {
		t.Errorf("request: %+v", res.Data)
	}

	again := svc.Create(ctx, accessrequeststore.TypeGroup, g.ID, "known@example.com")
	if again.Errors["message"] != "Access request was already sent for this group" {
		t.Errorf("duplicate pending: %+v", again)
	}

	stranger := svc.Create(ctx, accessrequeststore.TypeGroup, g.ID, "new@example.com")
	if !stranger.Success() || stranger.Data.UserID != nil {
		t.Errorf("unregistered invitee: %+v", stranger)
	}

	if bad := svc.Create(ctx, accessrequeststore.TypeNetwork, g.ID, "x@example.com"); bad.Kind != result.KindValidation {
		t.Errorf("group id used as network: %+v", bad)
	}
}

func TestCreate_AlreadyMember(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNetwork(ctx, "members")
	u := fx.CreateUser(ctx, "in@example.com", "")
	fx.AddNetworkRole(ctx, u.ID, models.NetworkRole{Network: &n.ID})

	res := svc.Create(ctx, accessrequeststore.TypeNetwork, n.ID, "in@example.com")
	if res.Errors["message"] != "User in@example.com is already a member of this network" {
		t.Errorf("member invite: %+v", res)
	}
}

func TestDecide_ApproveAssigns(t *testing.T) {
	svc, fx, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Approve")
	u := fx.CreateUser(ctx, "joiner@example.com", "")
	req := fx.CreateAccessRequest(ctx, "joiner@example.com", nil, g.ID)

	res := svc.Decide(ctx, req.ID, "Approved")
	if !res.Success() {
		t.Fatalf("Decide: %+v", res)
	}
	if res.Data.Status != models.AccessApproved || res.Data.UserID == nil || *res.Data.UserID != u.ID {
		t.Errorf("request after approval: %+v", res.Data)
	}
	got, _ := userstore.New(db).GetByID(ctx, u.ID)
	if !userstore.IsMember(got, userstore.GroupScope, g.ID) {
		t.Error("approval did not assign the user")
	}

	twice := svc.Decide(ctx, req.ID, models.AccessRejected)
	if twice.Kind != result.KindValidation {
		t.Errorf("deciding twice: %+v", twice)
	}
}

func TestDecide_RejectAndErrors(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Reject")
	req := fx.CreateAccessRequest(ctx, "nobody@example.com", nil, g.ID)

	approve := svc.Decide(ctx, req.ID, models.AccessApproved)
	if approve.Kind != result.KindValidation {
		t.Errorf("approval without account: %+v", approve)
	}

	reject := svc.Decide(ctx, req.ID, models.AccessRejected)
	if !reject.Success() || reject.Data.Status != models.AccessRejected {
		t.Errorf("reject: %+v", reject)
	}

	if r := svc.Decide(ctx, req.ID, "maybe"); r.Kind != result.KindValidation {
		t.Errorf("bad status: %+v", r)
	}
	if r := svc.Decide(ctx, primitive.NewObjectID(), models.AccessRejected); r.Kind != result.KindNotFound {
		t.Errorf("unknown request: %+v", r)
	}

	if r := svc.Delete(ctx, req.ID); !r.Success() {
		t.Errorf("Delete: %+v", r)
	}
}
