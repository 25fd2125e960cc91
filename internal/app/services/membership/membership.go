// Package membership reconciles the embedded group_roles and network_roles
// arrays on users: single and bulk assignment, unassignment, orphan
// cleanup and the member listings.
package membership

import (
	"context"
	"errors"
	"fmt"
	"sort"

	groupstore "github.com/dalemusser/accesshub/internal/app/store/groups"
	networkstore "github.com/dalemusser/accesshub/internal/app/store/networks"
	"github.com/dalemusser/accesshub/internal/app/store/queries/memberqueries"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service performs membership operations against one tenant database.
type Service struct {
	db       *mongo.Database
	users    *userstore.Store
	groups   *groupstore.Store
	networks *networkstore.Store
	log      *zap.Logger
	audit    *auditlog.Logger
	metrics  *metrics.Recorder
}

// New builds a Service for db. audit and rec may be nil.
func New(db *mongo.Database, log *zap.Logger, audit *auditlog.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		db:       db,
		users:    userstore.New(db),
		groups:   groupstore.New(db),
		networks: networkstore.New(db),
		log:      log,
		audit:    audit.ForTenant(db),
		metrics:  rec,
	}
}

func (s *Service) entityExists(ctx context.Context, sc userstore.Scope, id primitive.ObjectID) (bool, error) {
	if sc.Name == userstore.NetworkScope.Name {
		return s.networks.Exists(ctx, id)
	}
	return s.groups.Exists(ctx, id)
}

func (s *Service) internal(op string, sc userstore.Scope, id primitive.ObjectID, err error) {
	s.log.Error("membership operation failed",
		zap.Error(err),
		zap.String("op", op),
		zap.String(sc.Name+"_id", id.Hex()),
	)
}

// AssignOne adds a role-less entry for entity id to the user.
func (s *Service) AssignOne(ctx context.Context, sc userstore.Scope, id, userID primitive.ObjectID) (res result.Result[models.User]) {
	done := s.metrics.Start(sc.Name + ".assign_one")
	defer func() { done(res.Kind) }()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, userstore.ErrNotFound) {
		s.internal("assign_one", sc, id, err)
		return result.Internal[models.User](err)
	}
	found, err := s.entityExists(ctx, sc, id)
	if err != nil {
		s.internal("assign_one", sc, id, err)
		return result.Internal[models.User](err)
	}
	if !found || user.ID.IsZero() {
		msg := "User or " + sc.Title + " not found"
		return result.Fail[models.User](result.KindValidation, msg, result.Errors{"message": msg})
	}
	if userstore.IsMember(user, sc, id) {
		return result.BadRequest[models.User](sc.Title + " already assigned to User")
	}

	updated, err := s.users.AddMembership(ctx, userID, sc, userstore.Membership{Entity: &id})
	if errors.Is(err, userstore.ErrAlreadyMember) {
		return result.BadRequest[models.User](sc.Title + " already assigned to User")
	}
	if err != nil {
		s.internal("assign_one", sc, id, err)
		return result.Internal[models.User](err)
	}
	s.audit.UsersAssigned(ctx, sc.Name, id, []primitive.ObjectID{userID}, 1)
	return result.OK("User assigned to the "+sc.Title, updated)
}

// UnassignOne removes the user's entry for entity id by rewriting the array
// without it.
func (s *Service) UnassignOne(ctx context.Context, sc userstore.Scope, id, userID primitive.ObjectID) (res result.Result[models.User]) {
	done := s.metrics.Start(sc.Name + ".unassign_one")
	defer func() { done(res.Kind) }()

	found, err := s.entityExists(ctx, sc, id)
	if err != nil {
		s.internal("unassign_one", sc, id, err)
		return result.Internal[models.User](err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, userstore.ErrNotFound) {
		s.internal("unassign_one", sc, id, err)
		return result.Internal[models.User](err)
	}
	if !found || user.ID.IsZero() {
		return result.BadRequest[models.User](fmt.Sprintf("%s %s or User %s not found", sc.Title, id.Hex(), userID.Hex()))
	}

	idx := userstore.IndexOf(user, sc, id)
	if idx < 0 {
		return result.BadRequest[models.User](fmt.Sprintf("%s %s is not assigned to the user", sc.Title, id.Hex()))
	}
	entries := userstore.Memberships(user, sc)
	entries = append(entries[:idx], entries[idx+1:]...)

	updated, err := s.users.ReplaceMemberships(ctx, userID, sc, entries)
	if errors.Is(err, userstore.ErrNotFound) {
		return result.BadRequest[models.User]("Unable to unassign the User")
	}
	if err != nil {
		s.internal("unassign_one", sc, id, err)
		return result.Internal[models.User](err)
	}
	s.audit.UsersUnassigned(ctx, sc.Name, id, []primitive.ObjectID{userID}, 1)
	return result.OK("Successfully unassigned User from the "+sc.Title, updated)
}

// AssignMany assigns every listed user that exists and is not yet a
// member. Skipped users are reported per id; the number of users actually
// modified is always returned as data.
func (s *Service) AssignMany(ctx context.Context, sc userstore.Scope, id primitive.ObjectID, userIDs []primitive.ObjectID) (res result.Result[int64]) {
	done := s.metrics.Start(sc.Name + ".assign_many")
	defer func() { done(res.Kind) }()

	found, err := s.entityExists(ctx, sc, id)
	if err != nil {
		s.internal("assign_many", sc, id, err)
		return result.Internal[int64](err)
	}
	if !found {
		return result.BadRequest[int64](fmt.Sprintf("Invalid %s ID %s", sc.Name, id.Hex()))
	}

	userIDs = dedupe(userIDs)
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		s.internal("assign_many", sc, id, err)
		return result.Internal[int64](err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	skipped := result.Errors{}
	var queue []primitive.ObjectID
	for _, uid := range userIDs {
		u, ok := byID[uid]
		switch {
		case !ok:
			skipped[uid.Hex()] = fmt.Sprintf("User %s not found", uid.Hex())
		case userstore.IsMember(u, sc, id):
			skipped[uid.Hex()] = fmt.Sprintf("User %s is already assigned to the %s %s", uid.Hex(), sc.Title, id.Hex())
		default:
			queue = append(queue, uid)
		}
	}

	modified, err := s.users.AssignBatch(ctx, sc, id, queue)
	if err != nil {
		s.internal("assign_many", sc, id, err)
		return result.Internal[int64](err).WithData(modified)
	}
	if modified > 0 {
		s.audit.UsersAssigned(ctx, sc.Name, id, queue, modified)
	}

	msg := assignMessage(sc, modified, len(userIDs))
	if len(skipped) > 0 {
		return result.Fail[int64](result.KindValidation, msg, skipped).WithData(modified)
	}
	return result.OK(msg, modified)
}

func assignMessage(sc userstore.Scope, modified int64, requested int) string {
	switch {
	case modified == 0:
		return "No users assigned to the " + sc.Name + "."
	case modified == int64(requested):
		return "All users have been assigned to the " + sc.Name + "."
	default:
		return fmt.Sprintf("Operation partially successful; %d of %d users have been assigned to the %s.", modified, requested, sc.Name)
	}
}

// UnassignMany removes entity id from every listed user. The batch is
// refused unless every user exists and every user is assigned.
func (s *Service) UnassignMany(ctx context.Context, sc userstore.Scope, id primitive.ObjectID, userIDs []primitive.ObjectID) (res result.Result[[]primitive.ObjectID]) {
	done := s.metrics.Start(sc.Name + ".unassign_many")
	defer func() { done(res.Kind) }()
	type R = []primitive.ObjectID

	found, err := s.entityExists(ctx, sc, id)
	if err != nil {
		s.internal("unassign_many", sc, id, err)
		return result.Internal[R](err)
	}
	if !found {
		return result.BadRequest[R](fmt.Sprintf("%s %s not found", sc.Title, id.Hex()))
	}

	userIDs = dedupe(userIDs)
	existing, err := s.users.ExistingIDs(ctx, userIDs)
	if err != nil {
		s.internal("unassign_many", sc, id, err)
		return result.Internal[R](err)
	}
	if missing := subtract(userIDs, existing); len(missing) > 0 {
		errs := result.Errors{}
		for _, uid := range missing {
			errs[uid.Hex()] = fmt.Sprintf("User %s does not exist", uid.Hex())
		}
		return result.Fail[R](result.KindValidation, "Bad Request Error", errs)
	}

	assigned, err := s.users.AssignedIDs(ctx, sc, id, userIDs)
	if err != nil {
		s.internal("unassign_many", sc, id, err)
		return result.Internal[R](err)
	}
	if missing := subtract(userIDs, assigned); len(missing) > 0 {
		errs := result.Errors{}
		for _, uid := range missing {
			errs[uid.Hex()] = fmt.Sprintf("User %s is not assigned to this %s %s", uid.Hex(), sc.Name, id.Hex())
		}
		return result.Fail[R](result.KindValidation, "Bad Request Error", errs)
	}

	modified, err := s.users.PullMembers(ctx, sc, id, userIDs)
	if err != nil {
		s.internal("unassign_many", sc, id, err)
		return result.Internal[R](err)
	}
	if modified > 0 {
		s.audit.UsersUnassigned(ctx, sc.Name, id, userIDs, modified)
	}
	if modified == 0 {
		return result.BadRequest[R]("No matching User found in the system")
	}
	if notFound := int64(len(userIDs)) - modified; notFound > 0 {
		return result.Done[R](fmt.Sprintf("Operation partially successful since %d of the provided users were not found in the system", notFound))
	}
	return result.OK(fmt.Sprintf("Successfully unassigned all the provided users from the %s %s", sc.Name, id.Hex()), userIDs)
}

// ListAvailable lists users with no entry for entity id.
func (s *Service) ListAvailable(ctx context.Context, sc userstore.Scope, id primitive.ObjectID) (res result.Result[[]memberqueries.Row]) {
	done := s.metrics.Start(sc.Name + ".list_available")
	defer func() { done(res.Kind) }()

	if r, ok := s.requireEntity(ctx, sc, id); !ok {
		return r
	}
	rows, err := memberqueries.Available(ctx, s.db, sc, id)
	if err != nil {
		s.internal("list_available", sc, id, err)
		return result.Internal[[]memberqueries.Row](err)
	}
	return result.OK(fmt.Sprintf("retrieved all available users for %s %s", sc.Name, id.Hex()), rows)
}

// ListAssigned lists members of entity id with their role and permissions.
func (s *Service) ListAssigned(ctx context.Context, sc userstore.Scope, id primitive.ObjectID) (res result.Result[[]memberqueries.Row]) {
	done := s.metrics.Start(sc.Name + ".list_assigned")
	defer func() { done(res.Kind) }()

	if r, ok := s.requireEntity(ctx, sc, id); !ok {
		return r
	}
	rows, err := memberqueries.Assigned(ctx, s.db, sc, id)
	if err != nil {
		s.internal("list_assigned", sc, id, err)
		return result.Internal[[]memberqueries.Row](err)
	}
	return result.OK(fmt.Sprintf("Retrieved all assigned users for %s %s", sc.Name, id.Hex()), rows)
}

// ListAllGroupUsers lists a group's members together with its pending
// invitees. The two reads run concurrently.
func (s *Service) ListAllGroupUsers(ctx context.Context, groupID primitive.ObjectID) (res result.Result[[]memberqueries.Row]) {
	sc := userstore.GroupScope
	done := s.metrics.Start("group.list_all_users")
	defer func() { done(res.Kind) }()

	if r, ok := s.requireEntity(ctx, sc, groupID); !ok {
		return r
	}

	var members, pending []memberqueries.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = memberqueries.Assigned(gctx, s.db, sc, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = memberqueries.PendingGroupRequests(gctx, s.db, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.internal("list_all_users", sc, groupID, err)
		return result.Internal[[]memberqueries.Row](err)
	}

	return result.OK(
		fmt.Sprintf("Retrieved all users (including pending invites) for group %s", groupID.Hex()),
		MergeMembers(members, pending),
	)
}

// MergeMembers combines member rows and pending-invite rows. Rows are
// keyed by email and members win; a row without userType is a guest and a
// row without status is approved. The result is ordered newest first.
func MergeMembers(members, pending []memberqueries.Row) []memberqueries.Row {
	seen := make(map[string]bool, len(members)+len(pending))
	out := make([]memberqueries.Row, 0, len(members)+len(pending))
	add := func(r memberqueries.Row) {
		if seen[r.Email] {
			return
		}
		seen[r.Email] = true
		if r.UserType == "" {
			r.UserType = models.UserTypeGuest
		}
		if r.Status == "" {
			r.Status = models.AccessApproved
		}
		out = append(out, r)
	}
	for _, r := range members {
		add(r)
	}
	for _, r := range pending {
		add(r)
	}
	// createdAt is "YYYY-MM-DD HH:MM:SS", so string order is time order.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

// PruneOrphans removes null-reference entries from every user for scope.
func (s *Service) PruneOrphans(ctx context.Context, sc userstore.Scope) (res result.Result[int64]) {
	done := s.metrics.Start(sc.Name + ".prune_orphans")
	defer func() { done(res.Kind) }()

	n, err := s.users.PullOrphans(ctx, sc)
	if err != nil {
		s.log.Error("prune orphans failed", zap.Error(err), zap.String("scope", sc.Name))
		return result.Internal[int64](err)
	}
	return result.OK(fmt.Sprintf("removed orphaned %s entries from %d users", sc.Name, n), n)
}

func (s *Service) requireEntity(ctx context.Context, sc userstore.Scope, id primitive.ObjectID) (result.Result[[]memberqueries.Row], bool) {
	found, err := s.entityExists(ctx, sc, id)
	if err != nil {
		s.internal("require_entity", sc, id, err)
		return result.Internal[[]memberqueries.Row](err), false
	}
	if !found {
		return result.BadRequest[[]memberqueries.Row](fmt.Sprintf("Invalid %s ID %s, please crosscheck", sc.Name, id.Hex())), false
	}
	return result.Result[[]memberqueries.Row]{}, true
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// subtract returns the ids in all that are not in have, keeping order.
func subtract(all, have []primitive.ObjectID) []primitive.ObjectID {
	in := make(map[primitive.ObjectID]bool, len(have))
	for _, id := range have {
		in[id] = true
	}
	var out []primitive.ObjectID
	for _, id := range all {
		if !in[id] {
			out = append(out, id)
		}
	}
	return out
}
