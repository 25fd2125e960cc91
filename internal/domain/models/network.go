// internal/domain/models/network.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Network is the second owning entity for users. It mirrors Group but is
// identified by an acronym derived from its company email domain.
type Network struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name             string              `bson:"net_name" json:"net_name"`
	NameCI           string              `bson:"net_name_ci" json:"-"`
	Acronym          string              `bson:"net_acronym,omitempty" json:"net_acronym,omitempty"`
	Email            string              `bson:"net_email,omitempty" json:"net_email,omitempty"`
	Website          string              `bson:"net_website,omitempty" json:"net_website,omitempty"`
	Status           string              `bson:"net_status" json:"net_status"`
	Description      string              `bson:"net_description,omitempty" json:"net_description,omitempty"`
	Manager          *primitive.ObjectID `bson:"net_manager,omitempty" json:"net_manager,omitempty"`
	ManagerUsername  string              `bson:"net_manager_username,omitempty" json:"net_manager_username,omitempty"`
	ManagerFirstName string              `bson:"net_manager_firstname,omitempty" json:"net_manager_firstname,omitempty"`
	ManagerLastName  string              `bson:"net_manager_lastname,omitempty" json:"net_manager_lastname,omitempty"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}
