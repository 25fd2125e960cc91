package auditlog_test

import (
	"context"
	"testing"

	"github.com/dalemusser/accesshub/internal/app/store/audit"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/auth"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx := context.Background()

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.GroupCreated(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "g")
	if logger.ForTenant(nil) != nil {
		t.Error("ForTenant on nil logger should stay nil")
	}
}

func TestNew_UnknownModeDefaultsToAll(t *testing.T) {
	if got := auditlog.New(zap.NewNop(), "verbose").Mode(); got != auditlog.ModeAll {
		t.Errorf("Mode() = %q, want %q", got, auditlog.ModeAll)
	}
}

func TestLogger_ModeOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	logger := auditlog.New(zap.NewNop(), auditlog.ModeOff).ForTenant(db)
	logger.GroupCreated(ctx, groupID, primitive.NewObjectID(), "g")

	events, err := audit.New(db).Query(ctx, audit.QueryFilter{TargetID: &groupID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no stored events, got %d", len(events))
	}
}

func TestLogger_StoresActorFromContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	ctx = auth.WithUser(ctx, &auth.SessionUser{ID: actor.Hex()})

	groupID := primitive.NewObjectID()
	users := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}
	logger := auditlog.New(zap.NewNop(), auditlog.ModeDB).ForTenant(db)
	logger.UsersAssigned(ctx, "group", groupID, users, 2)

	events, err := audit.New(db).Query(ctx, audit.QueryFilter{TargetID: &groupID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ActorID == nil || *events[0].ActorID != actor {
		t.Errorf("actor: got %v, want %s", events[0].ActorID, actor.Hex())
	}
	if len(events[0].UserIDs) != 2 {
		t.Errorf("user ids: got %d, want 2", len(events[0].UserIDs))
	}
}
