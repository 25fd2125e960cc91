package indexes_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureTenant_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("first EnsureTenant failed: %v", err)
	}
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("second EnsureTenant failed: %v", err)
	}
}

func TestEnsureTenant_CreatesUniqueIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant failed: %v", err)
	}

	expected := map[string][]string{
		"groups":        {"uniq_groups_title", "idx_groups_titleci"},
		"networks":      {"uniq_networks_name"},
		"users":         {"uniq_users_email", "idx_users_group_roles_group", "idx_users_network_roles_network"},
		"roles":         {"uniq_roles_name_scope"},
		"permissions":   {"uniq_permissions_permission"},
		"preferences":   {"uniq_preferences_user_group"},
		"hosts":         {"uniq_hosts_email_phone_site"},
		"unknown_ips":   {"uniq_unknown_ips_ip"},
		"login_records": {"idx_login_records_user_created"},
	}
	for coll, want := range expected {
		got := indexNames(t, db, coll)
		for _, name := range want {
			if !got[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

func TestEnsureTenant_RenamesMisnamedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("permissions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "permission", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("permission_1"),
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant failed: %v", err)
	}

	got := indexNames(t, db, "permissions")
	if got["permission_1"] {
		t.Error("old index name should be gone")
	}
	if !got["uniq_permissions_permission"] {
		t.Error("expected renamed index")
	}
}

func TestDropLegacyGroupWebsite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := db.Collection("groups").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "grp_website", Value: 1}},
		Options: options.Index().SetUnique(true).SetName(indexes.LegacyGroupWebsiteIndex),
	})
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}

	if err := indexes.DropLegacyGroupWebsite(ctx, db); err != nil {
		t.Fatalf("DropLegacyGroupWebsite failed: %v", err)
	}
	if indexNames(t, db, "groups")[indexes.LegacyGroupWebsiteIndex] {
		t.Error("legacy index still present")
	}

	err = indexes.DropLegacyGroupWebsite(ctx, db)
	if !errors.Is(err, indexes.ErrIndexNotFound) {
		t.Errorf("second drop: got %v, want ErrIndexNotFound", err)
	}
}
