// internal/app/store/users/userstore.go
package userstore

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
	"golang.org/x/crypto/bcrypt"
)

// Collection holds one document per user.
const Collection = "users"

var def = entity.Def{
	Collection: Collection,
	Noun:       "user",
	Plural:     "users",
	UniqueKeys: []string{"email"},
	// Memberships only change through the membership operations below.
	Immutable:  []string{"group_roles", "network_roles", "createdAt", "lastLogin"},
	Projection: bson.M{"password": 0},
}

var (
	// ErrNotFound is returned when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyMember is returned by AddMembership when the user already
	// holds an entry for the entity.
	ErrAlreadyMember = errors.New("user already holds an entry for the entity")
	// ErrBadPassword is returned by Authenticate for a wrong password or a
	// user without one.
	ErrBadPassword = errors.New("invalid credentials")
)

type Store struct {
	e *entity.Store[models.User]
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	e := entity.New[models.User](db, def)
	return &Store{e: e, c: e.Collection()}
}

// Create inserts u. A non-empty password is stored as a bcrypt hash.
func (s *Store) Create(ctx context.Context, u models.User, password string) result.Result[models.User] {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return result.BadRequest[models.User]("the email is required")
	}
	u.UserName = strings.TrimSpace(u.UserName)
	if u.UserName == "" {
		u.UserName = u.Email
	}
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	if password != "" {
		hash, err := hashPassword(password)
		if err != nil {
			return result.Internal[models.User](err)
		}
		u.Password = hash
	}
	if u.GroupRoles == nil {
		u.GroupRoles = []models.GroupRole{}
	}
	if u.NetworkRoles == nil {
		u.NetworkRoles = []models.NetworkRole{}
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	res := s.e.Register(ctx, u)
	if res.Success() {
		res.Data.Password = ""
	}
	return res
}

// GetByID loads a user by ObjectID. Returns ErrNotFound when absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks a user up by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// GetByUserName looks a user up by exact user name.
func (s *Store) GetByUserName(ctx context.Context, name string) (models.User, error) {
	return s.findOne(ctx, bson.M{"userName": strings.TrimSpace(name)})
}

// Exists reports whether a user with id is stored.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.e.Exists(ctx, bson.M{"_id": id})
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.User] {
	return s.e.List(ctx, filter, page)
}

// Update applies update to the user matching filter. Email is normalized
// and a plain "password" value is replaced by its hash.
func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.User] {
	if v, ok := update["email"].(string); ok {
		update["email"] = normalize.Email(v)
	}
	if v, ok := update["status"].(string); ok {
		update["status"] = normalize.Status(v)
	}
	if v, ok := update["password"].(string); ok {
		if v == "" {
			delete(update, "password")
		} else {
			hash, err := hashPassword(v)
			if err != nil {
				return result.Internal[models.User](err)
			}
			update["password"] = hash
		}
	}
	res := s.e.Modify(ctx, filter, update)
	res.Data.Password = ""
	return res
}

func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.User] {
	res := s.e.Remove(ctx, filter)
	res.Data.Password = ""
	return res
}

// Authenticate returns the user identified by email or user name when
// password matches the stored hash.
func (s *Store) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	login = strings.TrimSpace(login)
	var (
		u   models.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.GetByEmail(ctx, login)
	} else {
		u, err = s.GetByUserName(ctx, login)
	}
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrBadPassword
	}
	if err != nil {
		return models.User{}, err
	}
	if u.Password == "" || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return models.User{}, ErrBadPassword
	}
	u.Password = ""
	return u, nil
}

// TouchLastLogin stamps lastLogin with the current time.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"lastLogin": now, "updatedAt": now}})
	return err
}

// FindByIDs returns the users whose ids are in ids, in no particular order.
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"password": 0}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	u, err := s.e.FindOne(ctx, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func hashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
