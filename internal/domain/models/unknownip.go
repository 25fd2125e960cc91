// internal/domain/models/unknownip.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnknownIP records a client address that made an unattributed request.
type UnknownIP struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	IP        string             `bson:"ip" json:"ip"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
