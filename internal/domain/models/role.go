// internal/domain/models/role.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SuperAdminRole is the code and name of the role provisioned with every
// group and network.
const SuperAdminRole = "SUPER_ADMIN"

// Role is scoped to exactly one group or one network, never both.
type Role struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Code        string               `bson:"role_code" json:"role_code"`
	Name        string               `bson:"role_name" json:"role_name"`
	Status      string               `bson:"role_status" json:"role_status"`
	GroupID     *primitive.ObjectID  `bson:"group_id,omitempty" json:"group_id,omitempty"`
	NetworkID   *primitive.ObjectID  `bson:"network_id,omitempty" json:"network_id,omitempty"`
	Permissions []primitive.ObjectID `bson:"role_permissions" json:"role_permissions"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
