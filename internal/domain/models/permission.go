// internal/domain/models/permission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is a tenant-wide named capability. Names are stored normalized
// (upper case, underscores) and are unique within a tenant.
type Permission struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Permission  string              `bson:"permission" json:"permission"`
	Description string              `bson:"description" json:"description"`
	NetworkID   *primitive.ObjectID `bson:"network_id,omitempty" json:"network_id,omitempty"`
	GroupID     *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
