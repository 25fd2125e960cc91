package groupstore_test

import (
	"testing"

	groupstore "github.com/dalemusser/accesshub/internal/app/store/groups"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newStore(t *testing.T) *groupstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureTenant(ctx, db); err != nil {
		t.Fatalf("EnsureTenant: %v", err)
	}
	return groupstore.New(db)
}

func TestStore_Create(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	res := store.Create(ctx, models.Group{
		Title:       "  Kampala Schools ",
		Description: "<b>pilot</b> sites",
	})
	if !res.Success() {
		t.Fatalf("Create failed: %+v", res)
	}
	g := res.Data
	if g.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if g.Title != "Kampala Schools" {
		t.Errorf("Title: got %q", g.Title)
	}
	if g.TitleCI != "kampala schools" {
		t.Errorf("TitleCI: got %q", g.TitleCI)
	}
	if g.Status != models.StatusActive {
		t.Errorf("Status: got %q, want %q", g.Status, models.StatusActive)
	}
	if g.Description != "pilot sites" {
		t.Errorf("Description: got %q", g.Description)
	}
	if g.CreatedAt.IsZero() || g.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != g.Title {
		t.Errorf("GetByID title: got %q", got.Title)
	}
}

func TestStore_Create_DuplicateTitle(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if res := store.Create(ctx, models.Group{Title: "Dup"}); !res.Success() {
		t.Fatalf("first Create failed: %+v", res)
	}
	res := store.Create(ctx, models.Group{Title: "Dup"})
	if res.Kind != result.KindConflict {
		t.Fatalf("expected conflict, got %v", res.Kind)
	}
	if res.Errors["grp_title"] != "the grp_title must be unique" {
		t.Errorf("errors: got %v", res.Errors)
	}
}

func TestStore_Create_RequiresTitle(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if res := store.Create(ctx, models.Group{Title: "   "}); res.Kind != result.KindValidation {
		t.Errorf("expected validation failure, got %v", res.Kind)
	}
}

func TestStore_Update(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := store.Create(ctx, models.Group{Title: "Before"}).Data

	res := store.Update(ctx, bson.M{"_id": g.ID}, bson.M{"grp_title": "After", "grp_status": "INACTIVE"})
	if !res.Success() {
		t.Fatalf("Update failed: %+v", res)
	}
	if res.Data.TitleCI != "after" {
		t.Errorf("TitleCI: got %q", res.Data.TitleCI)
	}
	if res.Data.Status != models.StatusInactive {
		t.Errorf("Status: got %q", res.Data.Status)
	}

	found, err := store.FindByTitle(ctx, "AFTER")
	if err != nil {
		t.Fatalf("FindByTitle failed: %v", err)
	}
	if found.ID != g.ID {
		t.Errorf("FindByTitle: got %v, want %v", found.ID, g.ID)
	}

	missing := store.Update(ctx, bson.M{"_id": primitive.NewObjectID()}, bson.M{"grp_title": "x"})
	if missing.Kind != result.KindNotFound {
		t.Errorf("expected not found, got %v", missing.Kind)
	}
}

func TestStore_List(t *testing.T) {
	store := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store.Create(ctx, models.Group{Title: "One"})
	store.Create(ctx, models.Group{Title: "Two", Status: "inactive"})

	res := store.List(ctx, bson.M{"grp_status": models.StatusActive}, paging.Page{Limit: 10})
	if !res.Success() {
		t.Fatalf("List failed: %+v", res)
	}
	if len(res.Data) != 1 || res.Data[0].Title != "One" {
		t.Errorf("List: got %+v", res.Data)
	}
}
