// internal/app/store/networks/networkstore.go
package networkstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store/entity"
	"github.com/dalemusser/accesshub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per network.
const Collection = "networks"

var def = entity.Def{
	Collection: Collection,
	Noun:       "network",
	Plural:     "networks",
	UniqueKeys: []string{"net_name"},
	Immutable:  []string{"net_name_ci", "createdAt"},
}

// ErrNotFound is returned by SetManager when no network matches.
var ErrNotFound = errors.New("network not found")

type Store struct {
	e *entity.Store[models.Network]
}

func New(db *mongo.Database) *Store {
	return &Store{e: entity.New[models.Network](db, def)}
}

// Create inserts n with a fresh id, folded name, lower-cased acronym,
// default status and timestamps.
func (s *Store) Create(ctx context.Context, n models.Network) result.Result[models.Network] {
	now := time.Now().UTC()
	n.ID = primitive.NewObjectID()
	n.Name = normalize.Name(n.Name)
	if n.Name == "" {
		return result.BadRequest[models.Network]("the net_name is required")
	}
	n.NameCI = text.Fold(n.Name)
	n.Acronym = strings.ToLower(strings.TrimSpace(n.Acronym))
	n.Email = normalize.Email(n.Email)
	n.Status = normalize.Status(n.Status)
	if n.Status == "" {
		n.Status = models.StatusActive
	}
	n.Description = htmlsanitize.Text(n.Description)
	n.CreatedAt = now
	n.UpdatedAt = now
	return s.e.Register(ctx, n)
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Network, error) {
	return s.e.FindOne(ctx, bson.M{"_id": id})
}

// Exists reports whether a network with id is stored.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.e.Exists(ctx, bson.M{"_id": id})
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.Network] {
	return s.e.List(ctx, filter, page)
}

// Update applies update to the network matching filter, keeping the folded
// name in step with net_name.
func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.Network] {
	if v, ok := update["net_name"].(string); ok {
		name := normalize.Name(v)
		if name == "" {
			return result.BadRequest[models.Network]("the net_name cannot be empty")
		}
		update["net_name"] = name
		update["net_name_ci"] = text.Fold(name)
	}
	if v, ok := update["net_acronym"].(string); ok {
		update["net_acronym"] = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := update["net_email"].(string); ok {
		update["net_email"] = normalize.Email(v)
	}
	if v, ok := update["net_description"].(string); ok {
		update["net_description"] = htmlsanitize.Text(v)
	}
	if v, ok := update["net_status"].(string); ok {
		update["net_status"] = normalize.Status(v)
	}
	return s.e.Modify(ctx, filter, update)
}

// Remove deletes the network matching filter. Services keep network
// deletion disabled; this exists for maintenance tooling and tests.
func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.Network] {
	return s.e.Remove(ctx, filter)
}

// FindByAcronym returns the first network whose acronym matches.
func (s *Store) FindByAcronym(ctx context.Context, acronym string) (models.Network, error) {
	acronym = strings.ToLower(strings.TrimSpace(acronym))
	if acronym == "" {
		return models.Network{}, mongo.ErrNoDocuments
	}
	return s.e.FindOne(ctx, bson.M{"net_acronym": acronym})
}

// WebsiteTaken reports whether another network already uses website.
func (s *Store) WebsiteTaken(ctx context.Context, website string) (bool, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return false, nil
	}
	return s.e.Exists(ctx, bson.M{"net_website": website})
}

// SetManager records u as the manager of network id and returns the
// updated network.
func (s *Store) SetManager(ctx context.Context, id primitive.ObjectID, u models.User) (models.Network, error) {
	uid := u.ID
	var out models.Network
	err := s.e.Collection().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"net_manager":           uid,
			"net_manager_username":  u.Email,
			"net_manager_firstname": u.FirstName,
			"net_manager_lastname":  u.LastName,
			"updatedAt":             time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Network{}, ErrNotFound
	}
	return out, err
}
