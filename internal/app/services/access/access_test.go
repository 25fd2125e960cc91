package access_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/services/access"
	rolestore "github.com/dalemusser/accesshub/internal/app/store/roles"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setup(t *testing.T) (*access.Service, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}
	return access.New(db, zap.NewNop(), nil, nil), testutil.NewFixtures(t, db), db
}

func TestCreateRole_Scope(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Scoped")
	if res := svc.CreateRole(ctx, models.Role{Name: "VIEWER", GroupID: &g.ID}); !res.Success() {
		t.Fatalf("CreateRole: %+v", res)
	}

	ghost := primitive.NewObjectID()
	res := svc.CreateRole(ctx, models.Role{Name: "VIEWER", NetworkID: &ghost})
	want := "Provided network " + ghost.Hex() + " is invalid, please crosscheck"
	if res.Kind != result.KindValidation || res.Errors["message"] != want {
		t.Errorf("unknown network: %+v", res)
	}

	both := svc.CreateRole(ctx, models.Role{Name: "X", GroupID: &g.ID, NetworkID: &ghost})
	if both.Kind != result.KindValidation {
		t.Errorf("two scopes: %+v", both)
	}

	dup := svc.CreateRole(ctx, models.Role{Name: "VIEWER", GroupID: &g.ID})
	if dup.Kind != result.KindConflict {
		t.Errorf("duplicate name in scope: %+v", dup)
	}
}

func TestAssignPermissionsToRole(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Perms")
	read := fx.CreatePermission(ctx, "READ")
	write := fx.CreatePermission(ctx, "WRITE")
	role := fx.CreateGroupRole(ctx, g.ID, "EDITOR", read.ID)

	res := svc.AssignPermissionsToRole(ctx, role.ID, []primitive.ObjectID{write.ID, write.ID})
	if !res.Success() {
		t.Fatalf("assign: %+v", res)
	}
	if len(res.Data.Permissions) != 2 || res.Data.Permissions[1] != write.ID {
		t.Errorf("permissions: %v", res.Data.Permissions)
	}

	again := svc.AssignPermissionsToRole(ctx, role.ID, []primitive.ObjectID{read.ID})
	if again.Kind != result.KindValidation || !strings.Contains(again.Errors["message"], read.ID.Hex()) {
		t.Errorf("already granted: %+v", again)
	}

	unknown := svc.AssignPermissionsToRole(ctx, role.ID, []primitive.ObjectID{primitive.NewObjectID()})
	if unknown.Kind != result.KindValidation {
		t.Errorf("unknown permission: %+v", unknown)
	}

	noRole := svc.AssignPermissionsToRole(ctx, primitive.NewObjectID(), []primitive.ObjectID{read.ID})
	if noRole.Kind != result.KindValidation {
		t.Errorf("unknown role: %+v", noRole)
	}
}

func TestUnassignPermissionFromRole(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Revoke")
	read := fx.CreatePermission(ctx, "READ")
	write := fx.CreatePermission(ctx, "WRITE")
	role := fx.CreateGroupRole(ctx, g.ID, "EDITOR", read.ID)

	res := svc.UnassignPermissionFromRole(ctx, role.ID, write.ID)
	want := "Permission " + write.ID.Hex() + " is not assigned to the Role " + role.ID.Hex()
	if res.Errors["message"] != want {
		t.Errorf("not held: %+v", res)
	}

	res = svc.UnassignPermissionFromRole(ctx, role.ID, read.ID)
	if !res.Success() || len(res.Data.Permissions) != 0 {
		t.Errorf("revoke: %+v", res)
	}
}

func TestDeletePermission_RevokesEverywhere(t *testing.T) {
	svc, fx, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Cascade")
	perm := fx.CreatePermission(ctx, "DOOMED")
	keep := fx.CreatePermission(ctx, "KEPT")
	a := fx.CreateGroupRole(ctx, g.ID, "A", perm.ID, keep.ID)
	b := fx.CreateGroupRole(ctx, g.ID, "B", perm.ID)

	if res := svc.DeletePermission(ctx, perm.ID); !res.Success() {
		t.Fatalf("DeletePermission: %+v", res)
	}
	roles := rolestore.New(db)
	ra, _ := roles.GetByID(ctx, a.ID)
	rb, _ := roles.GetByID(ctx, b.ID)
	if len(ra.Permissions) != 1 || ra.Permissions[0] != keep.ID {
		t.Errorf("role A: %v", ra.Permissions)
	}
	if len(rb.Permissions) != 0 {
		t.Errorf("role B: %v", rb.Permissions)
	}

	if res := svc.DeletePermission(ctx, perm.ID); res.Kind != result.KindNotFound {
		t.Errorf("second delete: %+v", res)
	}
}

func TestDeleteRole_DetachesMembers(t *testing.T) {
	svc, fx, db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fx.CreateGroup(ctx, "Detach")
	role := fx.CreateGroupRole(ctx, g.ID, "TEMP")
	u := fx.CreateUser(ctx, "member@example.com", "")
	fx.AddGroupRole(ctx, u.ID, models.GroupRole{Group: &g.ID, Role: &role.ID})

	if res := svc.DeleteRole(ctx, role.ID); !res.Success() {
		t.Fatalf("DeleteRole: %+v", res)
	}
	got, _ := userstore.New(db).GetByID(ctx, u.ID)
	if !userstore.IsMember(got, userstore.GroupScope, g.ID) {
		t.Fatal("membership removed with the role")
	}
	if got.GroupRoles[0].Role != nil {
		t.Errorf("role still referenced: %+v", got.GroupRoles[0])
	}
}

func TestListRoles_ExpandsPermissions(t *testing.T) {
	svc, fx, _ := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if res := svc.ListRoles(ctx, bson.M{}, paging.Page{Limit: 10}); !res.Success() || res.Message != "no roles exist" {
		t.Errorf("empty list: %+v", res)
	}

	g := fx.CreateGroup(ctx, "Listed")
	perm := fx.CreatePermission(ctx, "READ")
	fx.CreateGroupRole(ctx, g.ID, "READER", perm.ID)

	res := svc.ListRoles(ctx, bson.M{"group_id": g.ID}, paging.Page{Limit: 10})
	if !res.Success() || len(res.Data) != 1 {
		t.Fatalf("ListRoles: %+v", res)
	}
	ps := res.Data[0].Permissions
	if len(ps) != 1 || ps[0].Permission != "READ" {
		t.Errorf("expanded permissions: %+v", ps)
	}
}
