// internal/domain/models/location.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shape is a GeoJSON geometry as stored by MongoDB 2dsphere indexes.
type Shape struct {
	Type        string `bson:"type" json:"type"`
	Coordinates any    `bson:"coordinates" json:"coordinates"`
}

// Location is a named administrative boundary.
type Location struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	LongName    string             `bson:"long_name,omitempty" json:"long_name,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AdminLevel  string             `bson:"admin_level,omitempty" json:"admin_level,omitempty"`
	IsCustom    bool               `bson:"isCustom" json:"isCustom"`
	Shape       *Shape             `bson:"location,omitempty" json:"location,omitempty"`
	Metadata    map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
