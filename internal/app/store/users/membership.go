// internal/app/store/users/membership.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Scope names the embedded membership array a group or network writes to.
type Scope struct {
	Name  string // "group" | "network"
	Title string // "Group" | "Network"
	Array string // users field holding the entries
	Ref   string // entry field referencing the entity
}

var (
	GroupScope   = Scope{Name: "group", Title: "Group", Array: "group_roles", Ref: "group"}
	NetworkScope = Scope{Name: "network", Title: "Network", Array: "network_roles", Ref: "network"}
)

// RefPath is the dotted path matching users by entity, e.g. "group_roles.group".
func (sc Scope) RefPath() string { return sc.Array + "." + sc.Ref }

// Membership is a scope-neutral view of one group_roles or network_roles entry.
type Membership struct {
	Entity   *primitive.ObjectID
	Role     *primitive.ObjectID
	UserType string
}

func (m Membership) doc(sc Scope) bson.M {
	d := bson.M{sc.Ref: m.Entity}
	if m.Role != nil {
		d["role"] = m.Role
	}
	if m.UserType != "" {
		d["userType"] = m.UserType
	}
	return d
}

// Memberships returns u's entries for sc in stored order.
func Memberships(u models.User, sc Scope) []Membership {
	var out []Membership
	if sc.Name == NetworkScope.Name {
		for _, r := range u.NetworkRoles {
			out = append(out, Membership{Entity: r.Network, Role: r.Role, UserType: r.UserType})
		}
		return out
	}
	for _, r := range u.GroupRoles {
		out = append(out, Membership{Entity: r.Group, Role: r.Role, UserType: r.UserType})
	}
	return out
}

// IndexOf returns the position of u's entry for entity id, or -1.
func IndexOf(u models.User, sc Scope, id primitive.ObjectID) int {
	for i, m := range Memberships(u, sc) {
		if m.Entity != nil && *m.Entity == id {
			return i
		}
	}
	return -1
}

// IsMember reports whether u holds an entry for entity id.
func IsMember(u models.User, sc Scope, id primitive.ObjectID) bool {
	return IndexOf(u, sc, id) >= 0
}

// AddMembership appends m to the user's array unless the user already
// holds an entry for m.Entity, whatever its role or userType, and returns
// the updated user. It fails with ErrAlreadyMember in that case.
func (s *Store) AddMembership(ctx context.Context, userID primitive.ObjectID, sc Scope, m Membership) (models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, sc.RefPath(): bson.M{"$ne": m.Entity}},
		bson.M{
			"$push": bson.M{sc.Array: m.doc(sc)},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0}),
	).Decode(&u)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return u, err
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return models.User{}, err
	}
	if n == 0 {
		return models.User{}, ErrNotFound
	}
	return models.User{}, ErrAlreadyMember
}

// ReplaceMemberships overwrites the user's whole array for sc.
func (s *Store) ReplaceMemberships(ctx context.Context, userID primitive.ObjectID, sc Scope, ms []Membership) (models.User, error) {
	arr := bson.A{}
	for _, m := range ms {
		arr = append(arr, m.doc(sc))
	}
	return s.updateOne(ctx, userID, bson.M{"$set": bson.M{sc.Array: arr, "updatedAt": time.Now().UTC()}})
}

// AssignBatch adds a role-less entry for entity id to every user in userIDs
// that holds none, in one unordered bulk write, then pulls orphaned entries
// from the same users. It returns the number of users the add batch
// modified.
func (s *Store) AssignBatch(ctx context.Context, sc Scope, id primitive.ObjectID, userIDs []primitive.ObjectID) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	adds := make([]mongo.WriteModel, 0, len(userIDs))
	cleanups := make([]mongo.WriteModel, 0, len(userIDs))
	for _, uid := range userIDs {
		adds = append(adds, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": uid, sc.RefPath(): bson.M{"$ne": id}}).
			SetUpdate(bson.M{
				"$push": bson.M{sc.Array: bson.M{sc.Ref: id}},
				"$set":  bson.M{"updatedAt": now},
			}))
		cleanups = append(cleanups, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": uid, sc.RefPath(): nil}).
			SetUpdate(bson.M{"$pull": bson.M{sc.Array: bson.M{sc.Ref: nil}}}))
	}

	opts := options.BulkWrite().SetOrdered(false)
	res, err := s.c.BulkWrite(ctx, adds, opts)
	if err != nil {
		return 0, err
	}
	if _, err := s.c.BulkWrite(ctx, cleanups, opts); err != nil {
		return res.ModifiedCount, err
	}
	return res.ModifiedCount, nil
}

// PullMembers removes the entry for entity id from each listed user that
// holds one. It returns the number of users modified.
func (s *Store) PullMembers(ctx context.Context, sc Scope, id primitive.ObjectID, userIDs []primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"_id":    bson.M{"$in": userIDs},
			sc.Array: bson.M{"$elemMatch": bson.M{sc.Ref: id}},
		},
		bson.M{
			"$pull": bson.M{sc.Array: bson.M{sc.Ref: id}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PullEntity removes every user's entry for entity id. It is the member
// cleanup that accompanies deleting a group or network.
func (s *Store) PullEntity(ctx context.Context, sc Scope, id primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{sc.RefPath(): id},
		bson.M{"$pull": bson.M{sc.Array: bson.M{sc.Ref: id}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PullOrphans removes entries whose entity reference is null or missing,
// tenant wide. It returns the number of users modified.
func (s *Store) PullOrphans(ctx context.Context, sc Scope) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{sc.Array: bson.M{"$elemMatch": bson.M{sc.Ref: nil}}},
		bson.M{"$pull": bson.M{sc.Array: bson.M{sc.Ref: nil}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ClearRole unsets role roleID from every entry that carries it, in both
// membership arrays. The entries themselves stay. It returns the number of
// users modified.
func (s *Store) ClearRole(ctx context.Context, roleID primitive.ObjectID) (int64, error) {
	var total int64
	for _, sc := range []Scope{GroupScope, NetworkScope} {
		res, err := s.c.UpdateMany(ctx,
			bson.M{sc.Array + ".role": roleID},
			bson.M{"$unset": bson.M{sc.Array + ".$[e].role": ""}},
			options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []any{bson.M{"e.role": roleID}},
			}),
		)
		if err != nil {
			return total, err
		}
		total += res.ModifiedCount
	}
	return total, nil
}

// ExistingIDs returns the subset of ids that name stored users.
func (s *Store) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctIDs(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// AssignedIDs returns the subset of ids whose users hold an entry for
// entity id.
func (s *Store) AssignedIDs(ctx context.Context, sc Scope, id primitive.ObjectID, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctIDs(ctx, bson.M{"_id": bson.M{"$in": ids}, sc.RefPath(): id})
}

// MemberIDs returns the ids of every user holding an entry for entity id.
func (s *Store) MemberIDs(ctx context.Context, sc Scope, id primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.distinctIDs(ctx, bson.M{sc.RefPath(): id})
}

func (s *Store) distinctIDs(ctx context.Context, filter bson.M) ([]primitive.ObjectID, error) {
	vals, err := s.c.Distinct(ctx, "_id", filter)
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(vals))
	for _, v := range vals {
		if oid, ok := v.(primitive.ObjectID); ok {
			out = append(out, oid)
		}
	}
	return out, nil
}

func (s *Store) updateOne(ctx context.Context, userID primitive.ObjectID, update bson.M) (models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0}),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return u, err
}
