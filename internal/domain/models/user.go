// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types carried on membership entries.
const (
	UserTypeUser  = "user"
	UserTypeGuest = "guest"
)

// GroupRole is one membership entry in users.group_roles.
// Group is a pointer so that orphaned entries (null reference) decode cleanly.
type GroupRole struct {
	Group    *primitive.ObjectID `bson:"group" json:"group"`
	Role     *primitive.ObjectID `bson:"role,omitempty" json:"role,omitempty"`
	UserType string              `bson:"userType,omitempty" json:"userType,omitempty"`
}

// NetworkRole is one membership entry in users.network_roles.
type NetworkRole struct {
	Network  *primitive.ObjectID `bson:"network" json:"network"`
	Role     *primitive.ObjectID `bson:"role,omitempty" json:"role,omitempty"`
	UserType string              `bson:"userType,omitempty" json:"userType,omitempty"`
}

// User holds its group and network memberships inline.
//
// NOTE:
//   - At most one group_roles entry per group and one network_roles entry
//     per network. Entries whose reference is null are orphans.
//   - Password is a bcrypt hash and is never serialized to JSON.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FirstName      string             `bson:"firstName" json:"firstName"`
	LastName       string             `bson:"lastName" json:"lastName"`
	UserName       string             `bson:"userName" json:"userName"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	JobTitle       string             `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	Status         string             `bson:"status,omitempty" json:"status,omitempty"`
	LastLogin      *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	GroupRoles     []GroupRole        `bson:"group_roles" json:"group_roles"`
	NetworkRoles   []NetworkRole      `bson:"network_roles" json:"network_roles"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
