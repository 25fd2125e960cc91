// internal/app/store/roles/rolestore.go
package rolestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per role.
const Collection = "roles"

var def = entity.Def{
	Collection: Collection,
	Noun:       "role",
	Plural:     "roles",
	UniqueKeys: []string{"role_name"},
	// Scope and permissions change only through the dedicated operations.
	Immutable: []string{"group_id", "network_id", "role_permissions", "createdAt"},
}

// ErrNotFound is returned when no role matches.
var ErrNotFound = errors.New("role not found")

type Store struct {
	e *entity.Store[models.Role]
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	e := entity.New[models.Role](db, def)
	return &Store{e: e, c: e.Collection()}
}

// Create inserts r. The role must be scoped to exactly one group or one
// network; its code defaults to its name.
func (s *Store) Create(ctx context.Context, r models.Role) result.Result[models.Role] {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return result.BadRequest[models.Role]("the role_name is required")
	}
	if (r.GroupID == nil) == (r.NetworkID == nil) {
		return result.BadRequest[models.Role]("a role must belong to exactly one group or network")
	}
	r.Code = strings.TrimSpace(r.Code)
	if r.Code == "" {
		r.Code = r.Name
	}
	r.Status = normalize.Status(r.Status)
	if r.Status == "" {
		r.Status = models.StatusActive
	}
	if r.Permissions == nil {
		r.Permissions = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	r.ID = primitive.NewObjectID()
	r.CreatedAt = now
	r.UpdatedAt = now
	return s.e.Register(ctx, r)
}

// GetByID loads a role. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Role, error) {
	r, err := s.e.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Role{}, ErrNotFound
	}
	return r, err
}

// FindScoped returns the role named name within the given group or
// network scope.
func (s *Store) FindScoped(ctx context.Context, name string, groupID, networkID *primitive.ObjectID) (models.Role, error) {
	f := bson.M{"role_name": name}
	if groupID != nil {
		f["group_id"] = *groupID
	}
	if networkID != nil {
		f["network_id"] = *networkID
	}
	r, err := s.e.FindOne(ctx, f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Role{}, ErrNotFound
	}
	return r, err
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.Role] {
	return s.e.List(ctx, filter, page)
}

func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.Role] {
	if v, ok := update["role_status"].(string); ok {
		update["role_status"] = normalize.Status(v)
	}
	return s.e.Modify(ctx, filter, update)
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.Role] {
	return s.e.Remove(ctx, filter)
}

// AddPermissions adds ids to the role's permission set, keeping existing
// order and skipping ids already present.
func (s *Store) AddPermissions(ctx context.Context, roleID primitive.ObjectID, ids []primitive.ObjectID) (models.Role, error) {
	return s.update(ctx, roleID, bson.M{
		"$addToSet": bson.M{"role_permissions": bson.M{"$each": ids}},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

// PullPermission removes permID from the role's permission set.
func (s *Store) PullPermission(ctx context.Context, roleID, permID primitive.ObjectID) (models.Role, error) {
	return s.update(ctx, roleID, bson.M{
		"$pull": bson.M{"role_permissions": permID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// PullPermissionEverywhere removes permID from every role and returns the
// number of roles modified.
func (s *Store) PullPermissionEverywhere(ctx context.Context, permID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"role_permissions": permID},
		bson.M{"$pull": bson.M{"role_permissions": permID}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) update(ctx context.Context, roleID primitive.ObjectID, update bson.M) (models.Role, error) {
	var r models.Role
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": roleID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Role{}, ErrNotFound
	}
	return r, err
}

// PermissionRef is the permission shape embedded in role listings.
type PermissionRef struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Permission string             `bson:"permission" json:"permission"`
}

// Detail is a role with its permissions expanded.
type Detail struct {
	ID          primitive.ObjectID  `bson:"_id" json:"_id"`
	Code        string              `bson:"role_code" json:"role_code"`
	Name        string              `bson:"role_name" json:"role_name"`
	Status      string              `bson:"role_status" json:"role_status"`
	GroupID     *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	NetworkID   *primitive.ObjectID `bson:"network_id,omitempty" json:"network_id,omitempty"`
	Permissions []PermissionRef     `bson:"role_permissions" json:"role_permissions"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ListDetailed returns the roles matching filter with role_permissions
// expanded to {_id, permission}.
func (s *Store) ListDetailed(ctx context.Context, filter bson.M, page paging.Page) ([]Detail, error) {
	if filter == nil {
		filter = bson.M{}
	}
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: page.Skip}},
	}
	if page.Limit > 0 {
		pipe = append(pipe, bson.D{{Key: "$limit", Value: page.Limit}})
	}
	pipe = append(pipe,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "permissions",
			"localField":   "role_permissions",
			"foreignField": "_id",
			"as":           "role_permissions",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"role_permissions.description": 0,
			"role_permissions.network_id":  0,
			"role_permissions.group_id":    0,
			"role_permissions.createdAt":   0,
			"role_permissions.updatedAt":   0,
		}}},
	)

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]Detail, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
