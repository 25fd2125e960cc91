// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a tenant-scoped owner of a set of users.
//
// NOTE:
//   - Membership is embedded on the user (users.group_roles), not on the group.
//   - Every group owns exactly one SUPER_ADMIN role created with it.
type Group struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title            string              `bson:"grp_title" json:"grp_title"`
	TitleCI          string              `bson:"grp_title_ci" json:"-"`
	Status           string              `bson:"grp_status" json:"grp_status"`
	Description      string              `bson:"grp_description,omitempty" json:"grp_description,omitempty"`
	Website          string              `bson:"grp_website,omitempty" json:"grp_website,omitempty"`
	Country          string              `bson:"grp_country,omitempty" json:"grp_country,omitempty"`
	Timezone         string              `bson:"grp_timezone,omitempty" json:"grp_timezone,omitempty"`
	Manager          *primitive.ObjectID `bson:"grp_manager,omitempty" json:"grp_manager,omitempty"`
	ManagerUsername  string              `bson:"grp_manager_username,omitempty" json:"grp_manager_username,omitempty"`
	ManagerFirstName string              `bson:"grp_manager_firstname,omitempty" json:"grp_manager_firstname,omitempty"`
	ManagerLastName  string              `bson:"grp_manager_lastname,omitempty" json:"grp_manager_lastname,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}
