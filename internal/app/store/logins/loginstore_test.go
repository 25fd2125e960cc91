package loginstore_test

import (
	"net/http/httptest"
	"testing"
	"time"

	loginstore "github.com/dalemusser/accesshub/internal/app/store/logins"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/accesshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Create(ctx, models.LoginRecord{UserID: userID, IP: "192.168.1.1", Provider: loginstore.ProviderPassword}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var found models.LoginRecord
	if err := db.Collection(loginstore.Collection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&found); err != nil {
		t.Fatalf("find login record: %v", err)
	}
	if found.IP != "192.168.1.1" || found.Provider != loginstore.ProviderPassword {
		t.Errorf("record: %+v", found)
	}
	if found.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_CreateFrom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := models.User{ID: primitive.NewObjectID(), Email: "someone@example.com"}
	r := httptest.NewRequest("POST", "/api/v2/users/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	r.Header.Set("User-Agent", "curl/8.4.0")

	if err := store.CreateFrom(ctx, r, u, loginstore.ProviderPassword); err != nil {
		t.Fatalf("CreateFrom failed: %v", err)
	}
	recs, err := store.Recent(ctx, u.ID, paging.Page{Limit: 10})
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].IP != "203.0.113.9" || recs[0].UserAgent != "curl/8.4.0" || recs[0].Login != u.Email {
		t.Errorf("record: %+v", recs[0])
	}
}

func TestStore_RecentNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	base := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := models.LoginRecord{UserID: userID, CreatedAt: base.Add(time.Duration(i) * time.Hour), Provider: loginstore.ProviderPassword}
		if err := store.Create(ctx, rec); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}
	if err := store.Create(ctx, models.LoginRecord{UserID: primitive.NewObjectID()}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	recs, err := store.Recent(ctx, userID, paging.Page{Limit: 2})
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if !recs[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("newest first: got %v", recs[0].CreatedAt)
	}
}
