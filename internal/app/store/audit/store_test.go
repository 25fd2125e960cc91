package audit_test

import (
	"testing"

	"github.com/dalemusser/accesshub/internal/app/store/audit"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_LogAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	groupID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	err := store.Log(ctx, audit.Event{
		EventType: audit.EventUserAssigned,
		Scope:     "group",
		TargetID:  &groupID,
		UserIDs:   []primitive.ObjectID{userID},
		Success:   true,
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := store.Log(ctx, audit.Event{EventType: audit.EventGroupCreated, Success: true}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.Query(ctx, audit.QueryFilter{UserID: &userID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID.IsZero() || ev.Timestamp.IsZero() {
		t.Error("expected generated id and timestamp")
	}
	if ev.Category != audit.CategoryAdmin {
		t.Errorf("category: got %q, want %q", ev.Category, audit.CategoryAdmin)
	}

	all, err := store.Query(ctx, audit.QueryFilter{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 events, got %d", len(all))
	}
}
