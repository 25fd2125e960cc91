// internal/domain/models/accessrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Access request states.
const (
	AccessPending  = "pending"
	AccessApproved = "approved"
	AccessRejected = "rejected"
)

// AccessRequest is a pending invitation to a group or network. Pending
// requests are merged into member listings until the invitee has a real
// membership entry.
type AccessRequest struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID      *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Email       string              `bson:"email" json:"email"`
	TargetID    primitive.ObjectID  `bson:"targetId" json:"targetId"`
	RequestType string              `bson:"requestType" json:"requestType"` // group | network
	Status      string              `bson:"status" json:"status"`
	Token       string              `bson:"token,omitempty" json:"-"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
