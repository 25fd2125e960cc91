package membership_test

import (
	"testing"

	"github.com/dalemusser/accesshub/internal/app/services/membership"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*membership.Service, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}
	return membership.New(db, zap.NewNop(), nil, nil), testutil.NewFixtures(t, db), db
}

func TestAssignUnassignRoundTrip(t *testing.T) {
	svc, fx, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Round Trip")
	other := fx.CreateGroup(ctx, "Kept")
	u := fx.CreateUser(ctx, "rt@example.com", "")
	fx.AddGroupRole(ctx, u.ID, models.GroupRole{Group: &other.ID, UserType: models.UserTypeUser})

	before, _ := userstore.New(db).GetByID(ctx, u.ID)

	res := svc.AssignOne(ctx, userstore.GroupScope, g.ID, u.ID)
	if !res.Success() {
		t.Fatalf("AssignOne failed: %+v", res)
	}
	if res.Message != "User assigned to the Group" {
		t.Errorf("message: %q", res.Message)
	}
	if !userstore.IsMember(res.Data, userstore.GroupScope, g.ID) {
		t.Fatalf("expected membership after assign")
	}

	un := svc.UnassignOne(ctx, userstore.GroupScope, g.ID, u.ID)
	if !un.Success() {
		t.Fatalf("UnassignOne failed: %+v", un)
	}
	if len(un.Data.GroupRoles) != len(before.GroupRoles) {
		t.Fatalf("group_roles after round trip: got %+v, want %+v", un.Data.GroupRoles, before.GroupRoles)
	}
	if *un.Data.GroupRoles[0].Group != other.ID || un.Data.GroupRoles[0].UserType != models.UserTypeUser {
		t.Errorf("unrelated entry changed: %+v", un.Data.GroupRoles[0])
	}
}

func TestAssignOne_NoDoubleAppend(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNetwork(ctx, "twice")
	u := fx.CreateUser(ctx, "twice@example.com", "")

	if res := svc.AssignOne(ctx, userstore.NetworkScope, n.ID, u.ID); !res.Success() {
		t.Fatalf("first AssignOne: %+v", res)
	}
	res := svc.AssignOne(ctx, userstore.NetworkScope, n.ID, u.ID)
	if res.Kind != result.KindValidation || res.Errors["message"] != "Network already assigned to User" {
		t.Fatalf("second AssignOne: %+v", res)
	}

	many := svc.AssignMany(ctx, userstore.NetworkScope, n.ID, []primitive.ObjectID{u.ID})
	if many.Data != 0 {
		t.Errorf("AssignMany on a member should modify nothing, got %d", many.Data)
	}
	rows := svc.ListAssigned(ctx, userstore.NetworkScope, n.ID)
	if len(rows.Data) != 1 {
		t.Errorf("assigned rows: got %d", len(rows.Data))
	}
}

func TestAssignOne_Missing(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Lonely")
	res := svc.AssignOne(ctx, userstore.GroupScope, g.ID, primitive.NewObjectID())
	if res.Kind != result.KindValidation || res.Message != "User or Group not found" || res.Status != 400 {
		t.Errorf("got %+v", res)
	}

	u := fx.CreateUser(ctx, "x@example.com", "")
	un := svc.UnassignOne(ctx, userstore.GroupScope, g.ID, u.ID)
	want := "Group " + g.ID.Hex() + " is not assigned to the user"
	if un.Kind != result.KindValidation || un.Errors["message"] != want {
		t.Errorf("unassign non-member: %+v", un)
	}
}

func TestAssignMany_PartialAccounting(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Bulk")
	a := fx.CreateUser(ctx, "a@example.com", "")
	b := fx.CreateUser(ctx, "b@example.com", "")
	already := fx.CreateUser(ctx, "c@example.com", "")
	fx.AddGroupRole(ctx, already.ID, models.GroupRole{Group: &g.ID})
	ghost := primitive.NewObjectID()

	res := svc.AssignMany(ctx, userstore.GroupScope, g.ID, []primitive.ObjectID{a.ID, b.ID, already.ID, ghost})
	if res.Success() {
		t.Fatalf("skips must fail the batch: %+v", res)
	}
	if res.Status != 400 {
		t.Errorf("status: got %d", res.Status)
	}
	if !res.HasData() || res.Data != 2 {
		t.Errorf("data should carry the modified count 2, got %d (hasData %v)", res.Data, res.HasData())
	}
	if res.Message != "Operation partially successful; 2 of 4 users have been assigned to the group." {
		t.Errorf("message: %q", res.Message)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors: %+v", res.Errors)
	}
	if res.Errors[ghost.Hex()] != "User "+ghost.Hex()+" not found" {
		t.Errorf("ghost reason: %q", res.Errors[ghost.Hex()])
	}
	wantAlready := "User " + already.ID.Hex() + " is already assigned to the Group " + g.ID.Hex()
	if res.Errors[already.ID.Hex()] != wantAlready {
		t.Errorf("already reason: %q", res.Errors[already.ID.Hex()])
	}

	all := svc.AssignMany(ctx, userstore.GroupScope, fx.CreateGroup(ctx, "Fresh").ID, []primitive.ObjectID{a.ID, b.ID})
	if !all.Success() || all.Data != 2 || all.Message != "All users have been assigned to the group." {
		t.Errorf("clean batch: %+v", all)
	}

	bad := svc.AssignMany(ctx, userstore.GroupScope, primitive.NewObjectID(), []primitive.ObjectID{a.ID})
	if bad.Kind != result.KindValidation {
		t.Errorf("unknown group: %+v", bad)
	}
}

func TestUnassignMany_AllOrNothing(t *testing.T) {
	svc, fx, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Strict")
	a := fx.CreateUser(ctx, "a@example.com", "")
	b := fx.CreateUser(ctx, "b@example.com", "")
	outsider := fx.CreateUser(ctx, "o@example.com", "")
	fx.AddGroupRole(ctx, a.ID, models.GroupRole{Group: &g.ID})
	fx.AddGroupRole(ctx, b.ID, models.GroupRole{Group: &g.ID})
	users := userstore.New(db)

	ghost := primitive.NewObjectID()
	res := svc.UnassignMany(ctx, userstore.GroupScope, g.ID, []primitive.ObjectID{a.ID, ghost})
	if res.Success() || res.Errors[ghost.Hex()] != "User "+ghost.Hex()+" does not exist" {
		t.Fatalf("missing user: %+v", res)
	}

	res = svc.UnassignMany(ctx, userstore.GroupScope, g.ID, []primitive.ObjectID{a.ID, outsider.ID})
	want := "User " + outsider.ID.Hex() + " is not assigned to this group " + g.ID.Hex()
	if res.Success() || res.Errors[outsider.ID.Hex()] != want {
		t.Fatalf("unassigned user: %+v", res)
	}

	// Neither refused batch may have touched a.
	stillA, _ := users.GetByID(ctx, a.ID)
	if !userstore.IsMember(stillA, userstore.GroupScope, g.ID) {
		t.Fatal("refused batch removed a membership")
	}

	ok := svc.UnassignMany(ctx, userstore.GroupScope, g.ID, []primitive.ObjectID{a.ID, b.ID})
	if !ok.Success() || len(ok.Data) != 2 {
		t.Fatalf("valid batch: %+v", ok)
	}
	ids, _ := users.MemberIDs(ctx, userstore.GroupScope, g.ID)
	if len(ids) != 0 {
		t.Errorf("members left: %v", ids)
	}
}

func TestListAllGroupUsers(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Everyone")
	member := fx.CreateUser(ctx, "member@example.com", "")
	fx.AddGroupRole(ctx, member.ID, models.GroupRole{Group: &g.ID, UserType: models.UserTypeUser})
	fx.CreateAccessRequest(ctx, "member@example.com", &member.ID, g.ID)
	fx.CreateAccessRequest(ctx, "invitee@example.com", nil, g.ID)

	res := svc.ListAllGroupUsers(ctx, g.ID)
	if !res.Success() {
		t.Fatalf("ListAllGroupUsers: %+v", res)
	}
	if len(res.Data) != 2 {
		t.Fatalf("rows: got %+v", res.Data)
	}
	for _, r := range res.Data {
		switch r.Email {
		case "member@example.com":
			if r.ID == nil || *r.ID != member.ID || r.UserType != models.UserTypeUser {
				t.Errorf("member row should come from the membership: %+v", r)
			}
		case "invitee@example.com":
			if r.Status != models.AccessPending || r.UserType != models.UserTypeGuest || r.ID != nil || r.RequestID == nil {
				t.Errorf("invitee row: %+v", r)
			}
		default:
			t.Errorf("unexpected row %+v", r)
		}
	}

	if bad := svc.ListAllGroupUsers(ctx, primitive.NewObjectID()); bad.Kind != result.KindValidation {
		t.Errorf("unknown group: %+v", bad)
	}
}

func TestSetNetworkManagerAndRefresh(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n := fx.CreateNetwork(ctx, "airqo")
	u := fx.CreateUser(ctx, "boss@airqo.net", "")
	outsider := fx.CreateUser(ctx, "nobody@airqo.net", "")
	fx.AddNetworkRole(ctx, u.ID, models.NetworkRole{Network: &n.ID})
	fx.AddNetworkRole(ctx, outsider.ID, models.NetworkRole{Network: nil})

	if res := svc.SetNetworkManager(ctx, n.ID, outsider.ID); res.Success() {
		t.Errorf("non-member must not become manager: %+v", res)
	}
	res := svc.SetNetworkManager(ctx, n.ID, u.ID)
	if !res.Success() || res.Data.Manager == nil || *res.Data.Manager != u.ID {
		t.Fatalf("SetNetworkManager: %+v", res)
	}
	again := svc.SetNetworkManager(ctx, n.ID, u.ID)
	if again.Errors["message"] != "User "+u.ID.Hex()+" is already the network manager" {
		t.Errorf("second SetNetworkManager: %+v", again)
	}

	ref := svc.RefreshNetwork(ctx, n.ID)
	if !ref.Success() {
		t.Fatalf("RefreshNetwork: %+v", ref)
	}
	if len(ref.Data.Users) != 1 || ref.Data.Users[0] != u.ID {
		t.Errorf("net users: %v", ref.Data.Users)
	}
	if ref.Data.Pruned != 1 {
		t.Errorf("pruned: got %d, want 1", ref.Data.Pruned)
	}

	found := svc.NetworkFromEmail(ctx, "someone@AIRQO.net")
	if !found.Success() || found.Data != "airqo" {
		t.Errorf("NetworkFromEmail: %+v", found)
	}
	none := svc.NetworkFromEmail(ctx, "someone@unknown.org")
	if !none.Success() || none.Data != "" || none.Message != "No network exists for this operation" {
		t.Errorf("no match: %+v", none)
	}
	free := svc.NetworkFromEmail(ctx, "someone@gmail.com")
	if free.Errors["message"] != "You need a company email for this operation" {
		t.Errorf("free mail: %+v", free)
	}
}

func TestPruneOrphans(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "o@example.com", "")
	fx.AddGroupRole(ctx, u.ID, models.GroupRole{Group: nil})

	res := svc.PruneOrphans(ctx, userstore.GroupScope)
	if !res.Success() || res.Data != 1 {
		t.Errorf("PruneOrphans: %+v", res)
	}
}
