// internal/domain/models/host.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Host is the contact responsible for a site. (email, phone_number, site_id)
// is unique.
type Host struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName   string             `bson:"first_name" json:"first_name"`
	LastName    string             `bson:"last_name" json:"last_name"`
	PhoneNumber int64              `bson:"phone_number" json:"phone_number"`
	Email       string             `bson:"email" json:"email"`
	SiteID      primitive.ObjectID `bson:"site_id" json:"site_id"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
