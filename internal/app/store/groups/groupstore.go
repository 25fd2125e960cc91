// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
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
)

// Collection holds one document per group.
const Collection = "groups"

var def = entity.Def{
	Collection: Collection,
	Noun:       "group",
	Plural:     "groups",
	UniqueKeys: []string{"grp_title"},
	Immutable:  []string{"grp_title_ci", "createdAt"},
}

type Store struct {
	e *entity.Store[models.Group]
}

func New(db *mongo.Database) *Store {
	return &Store{e: entity.New[models.Group](db, def)}
}

// Create inserts g, assigning its id, folded title, default status and
// timestamps. A duplicate title yields the conflict envelope.
func (s *Store) Create(ctx context.Context, g models.Group) result.Result[models.Group] {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Title = normalize.Name(g.Title)
	if g.Title == "" {
		return result.BadRequest[models.Group]("the grp_title is required")
	}
	g.TitleCI = text.Fold(g.Title)
	g.Status = normalize.Status(g.Status)
	if g.Status == "" {
		g.Status = models.StatusActive
	}
	g.Description = htmlsanitize.Text(g.Description)
	g.CreatedAt = now
	g.UpdatedAt = now
	return s.e.Register(ctx, g)
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	return s.e.FindOne(ctx, bson.M{"_id": id})
}

// Exists reports whether a group with id is stored.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.e.Exists(ctx, bson.M{"_id": id})
}

func (s *Store) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]models.Group] {
	return s.e.List(ctx, filter, page)
}

// Update applies update to the group matching filter, keeping the folded
// title in step with grp_title.
func (s *Store) Update(ctx context.Context, filter, update bson.M) result.Result[models.Group] {
	if v, ok := update["grp_title"].(string); ok {
		title := normalize.Name(v)
		if title == "" {
			return result.BadRequest[models.Group]("the grp_title cannot be empty")
		}
		update["grp_title"] = title
		update["grp_title_ci"] = text.Fold(title)
	}
	if v, ok := update["grp_description"].(string); ok {
		update["grp_description"] = htmlsanitize.Text(v)
	}
	if v, ok := update["grp_status"].(string); ok {
		update["grp_status"] = normalize.Status(v)
	}
	return s.e.Modify(ctx, filter, update)
}

// Remove deletes the group matching filter. Services keep group deletion
// disabled; this exists for maintenance tooling and tests.
func (s *Store) Remove(ctx context.Context, filter bson.M) result.Result[models.Group] {
	return s.e.Remove(ctx, filter)
}

// FindByTitle looks a group up by its case-folded title.
func (s *Store) FindByTitle(ctx context.Context, title string) (models.Group, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Group{}, mongo.ErrNoDocuments
	}
	return s.e.FindOne(ctx, bson.M{"grp_title_ci": text.Fold(title)})
}
