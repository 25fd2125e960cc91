// Package memberqueries holds the read-side aggregations behind the
// assigned, available and all-users listings of groups and networks.
package memberqueries

import (
	"context"
	"time"

	accessrequeststore "github.com/dalemusser/accesshub/internal/app/store/accessrequests"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreatedAtFormat renders the creation time derived from a document id.
const CreatedAtFormat = "%Y-%m-%d %H:%M:%S"

// PermissionRef is a permission as embedded in a member row.
type PermissionRef struct {
	ID         primitive.ObjectID  `bson:"_id" json:"_id"`
	Permission string              `bson:"permission" json:"permission"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
}

// Row is one user (or pending invitee) in a member listing.
type Row struct {
	ID              *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	RequestID       *primitive.ObjectID `bson:"request_id,omitempty" json:"request_id,omitempty"`
	FirstName       string              `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName        string              `bson:"lastName,omitempty" json:"lastName,omitempty"`
	UserName        string              `bson:"userName,omitempty" json:"userName,omitempty"`
	Email           string              `bson:"email" json:"email"`
	ProfilePicture  string              `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	JobTitle        string              `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	IsActive        bool                `bson:"isActive" json:"isActive"`
	LastLogin       *time.Time          `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	Status          string              `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt       string              `bson:"createdAt" json:"createdAt"`
	RoleName        string              `bson:"role_name,omitempty" json:"role_name,omitempty"`
	RoleID          *primitive.ObjectID `bson:"role_id,omitempty" json:"role_id,omitempty"`
	RolePermissions []PermissionRef     `bson:"role_permissions,omitempty" json:"role_permissions,omitempty"`
	UserType        string              `bson:"userType,omitempty" json:"userType,omitempty"`
}

func idCreatedAt() bson.M {
	return bson.M{"$dateToString": bson.M{"format": CreatedAtFormat, "date": "$_id"}}
}

// Available lists users holding no entry for entity id.
func Available(ctx context.Context, db *mongo.Database, sc userstore.Scope, id primitive.ObjectID) ([]Row, error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{sc.RefPath(): bson.M{"$ne": id}}}},
		{{Key: "$project", Value: bson.M{
			"_id":       1,
			"firstName": 1,
			"lastName":  1,
			"userName":  1,
			"isActive":  1,
			"lastLogin": 1,
			"status":    1,
			"jobTitle":  1,
			"email":     1,
			"createdAt": idCreatedAt(),
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
	return run(ctx, db.Collection(userstore.Collection), pipe)
}

// Assigned lists users holding an entry for entity id, with the role of
// that entry and its permissions expanded.
func Assigned(ctx context.Context, db *mongo.Database, sc userstore.Scope, id primitive.ObjectID) ([]Row, error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{sc.RefPath(): id}}},
		{{Key: "$addFields", Value: bson.M{
			"_entry": bson.M{"$arrayElemAt": bson.A{
				bson.M{"$filter": bson.M{
					"input": "$" + sc.Array,
					"as":    "e",
					"cond":  bson.M{"$eq": bson.A{"$$e." + sc.Ref, id}},
				}},
				0,
			}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "roles",
			"localField":   "_entry.role",
			"foreignField": "_id",
			"as":           "role",
		}}},
		{{Key: "$addFields", Value: bson.M{"role": bson.M{"$arrayElemAt": bson.A{"$role", 0}}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "permissions",
			"localField":   "role.role_permissions",
			"foreignField": "_id",
			"as":           "role_permissions",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":              1,
			"firstName":        1,
			"lastName":         1,
			"userName":         1,
			"profilePicture":   1,
			"isActive":         1,
			"lastLogin":        1,
			"status":           1,
			"jobTitle":         1,
			"email":            1,
			"createdAt":        idCreatedAt(),
			"role_name":        "$role.role_name",
			"role_id":          "$role._id",
			"role_permissions": "$role_permissions",
			"userType":         bson.M{"$ifNull": bson.A{"$_entry.userType", models.UserTypeGuest}},
		}}},
		{{Key: "$project", Value: bson.M{
			"role_permissions.network_id":  0,
			"role_permissions.description": 0,
			"role_permissions.createdAt":   0,
			"role_permissions.updatedAt":   0,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: -1}}}},
	}
	return run(ctx, db.Collection(userstore.Collection), pipe)
}

// PendingGroupRequests lists pending access requests for group id joined
// to their users. Rows carry the request id under request_id and no _id,
// so they cannot be mistaken for member rows. userType comes from the
// user's entry for the group, or "guest".
func PendingGroupRequests(ctx context.Context, db *mongo.Database, id primitive.ObjectID) ([]Row, error) {
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"targetId":    id,
			"requestType": accessrequeststore.TypeGroup,
			"status":      models.AccessPending,
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         userstore.Collection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$addFields", Value: bson.M{"user": bson.M{"$arrayElemAt": bson.A{"$user", 0}}}}},
		{{Key: "$addFields", Value: bson.M{
			"_entry": bson.M{"$arrayElemAt": bson.A{
				bson.M{"$filter": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$user.group_roles", bson.A{}}},
					"as":    "e",
					"cond":  bson.M{"$eq": bson.A{"$$e.group", id}},
				}},
				0,
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":        0,
			"request_id": "$_id",
			"email":      1,
			"status":     1,
			"firstName":  "$user.firstName",
			"lastName":   "$user.lastName",
			"createdAt":  bson.M{"$dateToString": bson.M{"format": CreatedAtFormat, "date": "$createdAt"}},
			"userType":   bson.M{"$ifNull": bson.A{"$_entry.userType", models.UserTypeGuest}},
		}}},
	}
	return run(ctx, db.Collection(accessrequeststore.Collection), pipe)
}

func run(ctx context.Context, c *mongo.Collection, pipe mongo.Pipeline) ([]Row, error) {
	cur, err := c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]Row, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
