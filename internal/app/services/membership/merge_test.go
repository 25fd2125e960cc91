package membership

import (
	"testing"

	"github.com/dalemusser/accesshub/internal/app/store/queries/memberqueries"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMergeMembers(t *testing.T) {
	id := func() *primitive.ObjectID {
		oid := primitive.NewObjectID()
		return &oid
	}
	members := []memberqueries.Row{
		{ID: id(), Email: "a@x.org", Status: "active", UserType: models.UserTypeUser, CreatedAt: "2024-01-01 10:00:00"},
		{ID: id(), Email: "b@x.org", CreatedAt: "2024-03-01 10:00:00"},
	}
	pending := []memberqueries.Row{
		{RequestID: id(), Email: "a@x.org", Status: models.AccessPending, UserType: models.UserTypeGuest, CreatedAt: "2025-01-01 00:00:00"},
		{RequestID: id(), Email: "c@x.org", Status: models.AccessPending, CreatedAt: "2024-02-01 10:00:00"},
	}

	got := MergeMembers(members, pending)
	require.Len(t, got, 3)

	assert.Equal(t, []string{"b@x.org", "c@x.org", "a@x.org"}, []string{got[0].Email, got[1].Email, got[2].Email})

	// The membership row wins over the pending invite for the same email.
	assert.Equal(t, members[0].ID, got[2].ID)
	assert.Nil(t, got[2].RequestID)
	assert.Equal(t, "active", got[2].Status)
	assert.Equal(t, models.UserTypeUser, got[2].UserType)

	// Defaults for rows missing userType or status.
	assert.Equal(t, models.UserTypeGuest, got[0].UserType)
	assert.Equal(t, models.AccessApproved, got[0].Status)
	assert.Equal(t, models.UserTypeGuest, got[1].UserType)
	assert.Equal(t, models.AccessPending, got[1].Status)
}

func TestMergeMembers_Empty(t *testing.T) {
	got := MergeMembers(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAssignMessage(t *testing.T) {
	tests := []struct {
		modified  int64
		requested int
		want      string
	}{
		{0, 3, "No users assigned to the group."},
		{3, 3, "All users have been assigned to the group."},
		{2, 3, "Operation partially successful; 2 of 3 users have been assigned to the group."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, assignMessage(groupScopeForTest, tt.modified, tt.requested))
	}
}
