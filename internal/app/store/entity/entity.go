// internal/app/store/entity/entity.go

// Package entity is the shared adapter behind every per-collection store:
// Register, List, Modify and Remove, each returning a result.Result so
// services can hand the outcome straight to a controller.
package entity

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Def describes a collection to the adapter.
type Def struct {
	Collection string
	Noun       string // "group"
	Plural     string // "groups"

	// UniqueKeys name the fields reported on a duplicate-key error when the
	// driver message does not say which key collided.
	UniqueKeys []string

	// Immutable fields are stripped from Modify updates.
	Immutable []string

	// Projection applied to List; nil returns whole documents.
	Projection bson.M

	// Sort applied to List; nil sorts newest first.
	Sort bson.D
}

// Store is a typed adapter over one collection.
type Store[T any] struct {
	c   *mongo.Collection
	def Def
}

// New builds a Store for def in db.
func New[T any](db *mongo.Database, def Def) *Store[T] {
	return &Store[T]{c: db.Collection(def.Collection), def: def}
}

// Collection exposes the collection for store-specific queries.
func (s *Store[T]) Collection() *mongo.Collection { return s.c }

// Def returns the collection definition.
func (s *Store[T]) Def() Def { return s.def }

// Register inserts doc. The caller sets the id and timestamps.
func (s *Store[T]) Register(ctx context.Context, doc T) result.Result[T] {
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return Conflict[T](err, s.def.UniqueKeys)
		}
		return result.Internal[T](err)
	}
	return result.OK(s.def.Noun+" created", doc)
}

// List returns the documents matching filter within page.
func (s *Store[T]) List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]T] {
	sort := s.def.Sort
	if sort == nil {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}
	opts := options.Find().SetSort(sort).SetSkip(page.Skip)
	if page.Limit > 0 {
		opts.SetLimit(page.Limit)
	}
	if s.def.Projection != nil {
		opts.SetProjection(s.def.Projection)
	}

	cur, err := s.c.Find(ctx, nonNil(filter), opts)
	if err != nil {
		return result.Internal[[]T](err)
	}
	defer cur.Close(ctx)

	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return result.Internal[[]T](err)
	}
	if len(out) == 0 {
		return result.OK("no "+s.def.Plural+" exist", out)
	}
	return result.OK("successfully retrieved the "+s.def.Plural, out)
}

// Modify applies $set update to the single document matching filter and
// returns the updated document. An empty filter is refused so a request
// can never rewrite a whole collection.
func (s *Store[T]) Modify(ctx context.Context, filter, update bson.M) result.Result[T] {
	if len(filter) == 0 {
		return result.BadRequest[T]("a filter identifying the " + s.def.Noun + " is required")
	}
	set := bson.M{}
	for k, v := range update {
		if k == "_id" || s.immutable(k) {
			continue
		}
		set[k] = v
	}
	set["updatedAt"] = time.Now().UTC()

	var doc T
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return result.NotFound[T]("the " + s.def.Noun + " does not exist, please crosscheck")
	case err != nil:
		if wafflemongo.IsDup(err) {
			return Conflict[T](err, s.def.UniqueKeys)
		}
		return result.Internal[T](err)
	}
	return result.OK("successfully modified the "+s.def.Noun, doc)
}

// Remove deletes the single document matching filter and returns it.
func (s *Store[T]) Remove(ctx context.Context, filter bson.M) result.Result[T] {
	if len(filter) == 0 {
		return result.BadRequest[T]("a filter identifying the " + s.def.Noun + " is required")
	}
	var doc T
	err := s.c.FindOneAndDelete(ctx, filter).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return result.NotFound[T]("the " + s.def.Noun + " does not exist, please crosscheck")
	case err != nil:
		return result.Internal[T](err)
	}
	return result.OK("successfully removed the "+s.def.Noun, doc)
}

// FindOne decodes the single document matching filter. It returns
// mongo.ErrNoDocuments when none matches.
func (s *Store[T]) FindOne(ctx context.Context, filter bson.M) (T, error) {
	var doc T
	err := s.c.FindOne(ctx, filter).Decode(&doc)
	return doc, err
}

// Exists reports whether any document matches filter.
func (s *Store[T]) Exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := s.c.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *Store[T]) immutable(k string) bool {
	for _, f := range s.def.Immutable {
		if f == k {
			return true
		}
	}
	return false
}

func nonNil(m bson.M) bson.M {
	if m == nil {
		return bson.M{}
	}
	return m
}

/* -------------------------------------------------------------------------- */
/* Duplicate-key reporting                                                    */
/* -------------------------------------------------------------------------- */

var dupKeyRE = regexp.MustCompile(`dup key: \{\s*([^}]*)\}`)

// Conflict builds the 409 envelope for a duplicate-key error, naming each
// colliding key as "the <key> must be unique".
func Conflict[T any](err error, fallback []string) result.Result[T] {
	keys := DuplicateKeys(err)
	if len(keys) == 0 {
		keys = fallback
	}
	errs := result.Errors{}
	for _, k := range keys {
		errs[k] = "the " + k + " must be unique"
	}
	if len(errs) == 0 {
		errs["message"] = "duplicate value"
	}
	return result.Fail[T](result.KindConflict, "validation errors for some of the provided fields", errs)
}

// DuplicateKeys extracts the field names from an E11000 message such as
// `dup key: { email: "a@b.c", userName: "x" }`.
func DuplicateKeys(err error) []string {
	if err == nil {
		return nil
	}
	var msgs []string
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			msgs = append(msgs, e.Message)
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			msgs = append(msgs, e.Message)
		}
	}
	if len(msgs) == 0 {
		msgs = []string{err.Error()}
	}

	seen := map[string]bool{}
	var keys []string
	for _, msg := range msgs {
		m := dupKeyRE.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		for _, part := range splitTopLevel(m[1]) {
			k, _, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			k = strings.TrimSpace(k)
			if k != "" && !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// splitTopLevel splits on commas that are not inside quotes.
func splitTopLevel(s string) []string {
	var parts []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
