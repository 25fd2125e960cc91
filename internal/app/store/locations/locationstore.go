// internal/app/store/locations/locationstore.go
package locationstore

import (
	"context"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "locations"

var def = entity.Def{
	Collection: Collection,
	Noun:       "location",
	Plural:     "locations",
	UniqueKeys: []string{"name"},
	Immutable:  []string{"createdAt"},
	Sort:       bson.D{{Key: "name", Value: 1}},
}

type Store struct {
	e *entity.Store[models.Location]
}

func New(db *mongo.Database) *Store {
	return &Store{e: entity.New[models.Location](db, def)}
}

// Create inserts l. A shape, when given, must be a Polygon or MultiPolygon.
func (s *Store) Create(ctx context.Context, l models.Location) result.Result[models.Location] {
	l.Name = normalize.Name(l.Name)
	if l.Name == "" {
		return result.BadRequest[models.Location]("the name is required")
	}
	if l.Shape != nil && l.Shape.Type != "Polygon" && l.Shape.Type != "MultiPolygon" {
		return result.BadRequest[models.Location]("the location type must be Polygon or MultiPolygon")
	}
	l.Description = htmlsanitize.Text(l.Description)
	l.AdminLevel = normalize.Status(l.AdminLevel)
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	l.CreatedAt = now
	l.UpdatedAt = now
	return s.e.Register(ctx, l)
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.Location] {
	return s.e.List(ctx, filter, page)
}

func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.Location] {
	if v, ok := update["description"].(string); ok {
		update["description"] = htmlsanitize.Text(v)
	}
	if v, ok := update["admin_level"].(string); ok {
		update["admin_level"] = normalize.Status(v)
	}
	return s.e.Modify(ctx, filter, update)
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.Location] {
	return s.e.Remove(ctx, filter)
}
