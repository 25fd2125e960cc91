// internal/app/store/permissions/permissionstore.go
package permissionstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per permission name.
const Collection = "permissions"

var def = entity.Def{
	Collection: Collection,
	Noun:       "permission",
	Plural:     "permissions",
	UniqueKeys: []string{"permission"},
	Immutable:  []string{"createdAt"},
	Sort:       bson.D{{Key: "permission", Value: 1}},
}

type Store struct {
	e *entity.Store[models.Permission]
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	e := entity.New[models.Permission](db, def)
	return &Store{e: e, c: e.Collection()}
}

// Create inserts p with its name normalized. An empty description
// defaults to the normalized name.
func (s *Store) Create(ctx context.Context, p models.Permission) result.Result[models.Permission] {
	p.Permission = normalize.PermissionName(p.Permission)
	if p.Permission == "" {
		return result.BadRequest[models.Permission]("the permission must contain letters")
	}
	p.Description = normalize.Name(p.Description)
	if p.Description == "" {
		p.Description = p.Permission
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.e.Register(ctx, p)
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Permission, error) {
	return s.e.FindOne(ctx, bson.M{"_id": id})
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.Permission] {
	return s.e.List(ctx, filter, page)
}

// Update applies update to the permission matching filter, normalizing a
// new name.
func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.Permission] {
	if v, ok := update["permission"].(string); ok {
		name := normalize.PermissionName(v)
		if name == "" {
			return result.BadRequest[models.Permission]("the permission must contain letters")
		}
		update["permission"] = name
	}
	return s.e.Modify(ctx, filter, update)
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.Permission] {
	return s.e.Remove(ctx, filter)
}

// CountIDs returns how many of ids name stored permissions.
func (s *Store) CountIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// FindByNames returns the stored permissions whose names are in names.
// Names are compared as given; callers normalize first.
func (s *Store) FindByNames(ctx context.Context, names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"permission": bson.M{"$in": names}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Permission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureNamed makes sure a permission exists for every name and returns
// their ids in the order of the normalized, de-duplicated names. Names
// are normalized first; only missing ones are inserted, unordered. A
// name inserted concurrently by another caller is re-read rather than
// reported as a failure.
func (s *Store) EnsureNamed(ctx context.Context, names []string) ([]primitive.ObjectID, error) {
	names = normalize.PermissionNames(names)
	if len(names) == 0 {
		return []primitive.ObjectID{}, nil
	}

	existing, err := s.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]primitive.ObjectID, len(names))
	for _, p := range existing {
		byName[p.Permission] = p.ID
	}

	now := time.Now().UTC()
	var docs []any
	for _, n := range names {
		if _, ok := byName[n]; ok {
			continue
		}
		docs = append(docs, models.Permission{
			ID:          primitive.NewObjectID(),
			Permission:  n,
			Description: n,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if len(docs) > 0 {
		_, err := s.c.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
		if err != nil && !onlyDuplicates(err) {
			return nil, err
		}
		// Re-read so inserted ids and concurrently inserted ones both resolve.
		all, err := s.FindByNames(ctx, names)
		if err != nil {
			return nil, err
		}
		for _, p := range all {
			byName[p.Permission] = p.ID
		}
	}

	ids := make([]primitive.ObjectID, 0, len(names))
	for _, n := range names {
		id, ok := byName[n]
		if !ok {
			return nil, errors.New("permission " + n + " could not be resolved")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func onlyDuplicates(err error) bool {
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		if bwe.WriteConcernError != nil {
			return false
		}
		for _, we := range bwe.WriteErrors {
			if we.Code != 11000 {
				return false
			}
		}
		return len(bwe.WriteErrors) > 0
	}
	return wafflemongo.IsDup(err)
}
