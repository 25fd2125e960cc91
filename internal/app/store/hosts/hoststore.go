// internal/app/store/hosts/hoststore.go
package hoststore

import (
	"context"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "hosts"

var def = entity.Def{
	Collection: Collection,
	Noun:       "host",
	Plural:     "hosts",
	UniqueKeys: []string{"email", "phone_number", "site_id"},
	Immutable:  []string{"createdAt"},
}

type Store struct {
	e *entity.Store[models.Host]
}

func New(db *mongo.Database) *Store {
	return &Store{e: entity.New[models.Host](db, def)}
}

func (s *Store) Create(ctx context.Context, h models.Host) result.Result[models.Host] {
	h.Email = normalize.Email(h.Email)
	h.FirstName = normalize.Name(h.FirstName)
	h.LastName = normalize.Name(h.LastName)
	if h.Email == "" || h.SiteID.IsZero() {
		return result.BadRequest[models.Host]("the email and site_id are required")
	}
	now := time.Now().UTC()
	h.ID = primitive.NewObjectID()
	h.CreatedAt = now
	h.UpdatedAt = now
	return s.e.Register(ctx, h)
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.Host] {
	return s.e.List(ctx, filter, page)
}

func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.Host] {
	if v, ok := update["email"].(string); ok {
		update["email"] = normalize.Email(v)
	}
	return s.e.Modify(ctx, filter, update)
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.Host] {
	return s.e.Remove(ctx, filter)
}
