// internal/app/store/accessrequests/accessrequeststore.go
package accessrequeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per access request.
const Collection = "access_requests"

// Request types.
const (
	TypeGroup   = "group"
	TypeNetwork = "network"
)

var def = entity.Def{
	Collection: Collection,
	Noun:       "access request",
	Plural:     "access requests",
	UniqueKeys: []string{"token"},
	Immutable:  []string{"token", "targetId", "requestType", "createdAt"},
}

// ErrNotFound is returned when no request matches.
var ErrNotFound = errors.New("access request not found")

type Store struct {
	e *entity.Store[models.AccessRequest]
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	e := entity.New[models.AccessRequest](db, def)
	return &Store{e: e, c: e.Collection()}
}

// Create inserts a pending request with a fresh random token.
func (s *Store) Create(ctx context.Context, a models.AccessRequest) result.Result[models.AccessRequest] {
	a.Email = normalize.Email(a.Email)
	if a.Email == "" {
		return result.BadRequest[models.AccessRequest]("the email is required")
	}
	if a.RequestType != TypeGroup && a.RequestType != TypeNetwork {
		return result.BadRequest[models.AccessRequest]("the requestType must be group or network")
	}
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.Status = models.AccessPending
	a.Token = uuid.NewString()
	a.CreatedAt = now
	a.UpdatedAt = now
	return s.e.Register(ctx, a)
}

// GetByID loads a request. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AccessRequest, error) {
	a, err := s.e.FindOne(ctx, bson.M{"_id": id})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AccessRequest{}, ErrNotFound
	}
	return a, err
}

// HasPending reports whether email already has a pending request for target.
func (s *Store) HasPending(ctx context.Context, email string, target primitive.ObjectID, requestType string) (bool, error) {
	return s.e.Exists(ctx, bson.M{
		"email":       normalize.Email(email),
		"targetId":    target,
		"requestType": requestType,
		"status":      models.AccessPending,
	})
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.AccessRequest] {
	return s.e.List(ctx, filter, page)
}

func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.AccessRequest] {
	if v, ok := update["email"].(string); ok {
		update["email"] = normalize.Email(v)
	}
	return s.e.Modify(ctx, filter, update)
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.AccessRequest] {
	return s.e.Remove(ctx, filter)
}

// SetStatus moves a request to status and links userID when given.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string, userID *primitive.ObjectID) (models.AccessRequest, error) {
	set := bson.M{"status": status, "updatedAt": time.Now().UTC()}
	if userID != nil {
		set["user_id"] = *userID
	}
	var out models.AccessRequest
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AccessRequest{}, ErrNotFound
	}
	return out, err
}
