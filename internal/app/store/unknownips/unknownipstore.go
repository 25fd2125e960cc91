// internal/app/store/unknownips/unknownipstore.go
package unknownipstore

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "unknown_ips"

var def = entity.Def{
	Collection: Collection,
	Noun:       "IP",
	Plural:     "IPs",
	UniqueKeys: []string{"ip"},
	Immutable:  []string{"createdAt"},
}

type Store struct {
	e *entity.Store[models.UnknownIP]
}

func New(db *mongo.Database) *Store {
	return &Store{e: entity.New[models.UnknownIP](db, def)}
}

// Create records ip. The address must parse as IPv4 or IPv6.
func (s *Store) Create(ctx context.Context, ip models.UnknownIP) result.Result[models.UnknownIP] {
	ip.IP = strings.TrimSpace(ip.IP)
	if net.ParseIP(ip.IP) == nil {
		return result.BadRequest[models.UnknownIP]("the ip " + ip.IP + " is not a valid address")
	}
	now := time.Now().UTC()
	ip.ID = primitive.NewObjectID()
	ip.CreatedAt = now
	ip.UpdatedAt = now
	return s.e.Register(ctx, ip)
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.UnknownIP] {
	return s.e.List(ctx, filter, page)
}

func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.UnknownIP] {
	if v, ok := update["ip"].(string); ok {
		v = strings.TrimSpace(v)
		if net.ParseIP(v) == nil {
			return result.BadRequest[models.UnknownIP]("the ip " + v + " is not a valid address")
		}
		update["ip"] = v
	}
	return s.e.Modify(ctx, filter, update)
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.UnknownIP] {
	return s.e.Remove(ctx, filter)
}
