// Package access manages roles and permissions: their CRUD and the
// grants that link permissions to roles.
package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	groupstore "github.com/dalemusser/accesshub/internal/app/store/groups"
	networkstore "github.com/dalemusser/accesshub/internal/app/store/networks"
	permissionstore "github.com/dalemusser/accesshub/internal/app/store/permissions"
	rolestore "github.com/dalemusser/accesshub/internal/app/store/roles"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	roles       *rolestore.Store
	permissions *permissionstore.Store
	users       *userstore.Store
	groups      *groupstore.Store
	networks    *networkstore.Store
	log         *zap.Logger
	audit       *auditlog.Logger
	metrics     *metrics.Recorder
}

// New builds a Service for db. audit and rec may be nil.
func New(db *mongo.Database, log *zap.Logger, audit *auditlog.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		roles:       rolestore.New(db),
		permissions: permissionstore.New(db),
		users:       userstore.New(db),
		groups:      groupstore.New(db),
		networks:    networkstore.New(db),
		log:         log,
		audit:       audit.ForTenant(db),
		metrics:     rec,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Roles                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// ListRoles returns roles with their permissions expanded.
func (s *Service) ListRoles(ctx context.Context, filter bson.M, page paging.Page) (res result.Result[[]rolestore.Detail]) {
	done := s.metrics.Start("role.list")
	defer func() { done(res.Kind) }()

	roles, err := s.roles.ListDetailed(ctx, filter, page)
	if err != nil {
		s.log.Error("list roles failed", zap.Error(err))
		return result.Internal[[]rolestore.Detail](err)
	}
	if len(roles) == 0 {
		return result.OK("no roles exist", roles)
	}
	return result.OK("successfully retrieved the roles", roles)
}

// CreateRole inserts a role after checking that its group or network
// exists.
func (s *Service) CreateRole(ctx context.Context, r models.Role) (res result.Result[models.Role]) {
	done := s.metrics.Start("role.create")
	defer func() { done(res.Kind) }()

	var (
		found bool
		err   error
		what  string
		id    primitive.ObjectID
	)
	switch {
	case r.GroupID != nil && r.NetworkID == nil:
		what, id = "group", *r.GroupID
		found, err = s.groups.Exists(ctx, id)
	case r.NetworkID != nil && r.GroupID == nil:
		what, id = "network", *r.NetworkID
		found, err = s.networks.Exists(ctx, id)
	default:
		return result.BadRequest[models.Role]("a role must belong to exactly one group or network")
	}
	if err != nil {
		s.log.Error("role scope lookup failed", zap.Error(err), zap.String(what+"_id", id.Hex()))
		return result.Internal[models.Role](err)
	}
	if !found {
		return result.BadRequest[models.Role](fmt.Sprintf("Provided %s %s is invalid, please crosscheck", what, id.Hex()))
	}
	return s.roles.Create(ctx, r)
}

// UpdateRole modifies the role matching filter. Scope and permissions are
// left untouched.
func (s *Service) UpdateRole(ctx context.Context, filter, update bson.M) (res result.Result[models.Role]) {
	done := s.metrics.Start("role.update")
	defer func() { done(res.Kind) }()
	return s.roles.Update(ctx, filter, update)
}

// DeleteRole removes a role and detaches it from every membership entry
// that referenced it.
func (s *Service) DeleteRole(ctx context.Context, roleID primitive.ObjectID) (res result.Result[models.Role]) {
	done := s.metrics.Start("role.delete")
	defer func() { done(res.Kind) }()

	removed := s.roles.Remove(ctx, bson.M{"_id": roleID})
	if !removed.Success() {
		return removed
	}
	n, err := s.users.ClearRole(ctx, roleID)
	if err != nil {
		s.log.Error("detach deleted role failed", zap.Error(err), zap.String("role_id", roleID.Hex()))
		return result.Internal[models.Role](err)
	}
	s.log.Info("role deleted", zap.String("role_id", roleID.Hex()), zap.Int64("detached", n))
	return removed
}

// AssignPermissionsToRole grants permIDs to the role. Every id must name
// a stored permission and none may already be granted.
func (s *Service) AssignPermissionsToRole(ctx context.Context, roleID primitive.ObjectID, permIDs []primitive.ObjectID) (res result.Result[models.Role]) {
	done := s.metrics.Start("role.assign_permissions")
	defer func() { done(res.Kind) }()

	role, err := s.roles.GetByID(ctx, roleID)
	if errors.Is(err, rolestore.ErrNotFound) {
		return result.BadRequest[models.Role](fmt.Sprintf("Role %s Not Found", roleID.Hex()))
	}
	if err != nil {
		s.log.Error("role lookup failed", zap.Error(err), zap.String("role_id", roleID.Hex()))
		return result.Internal[models.Role](err)
	}

	permIDs = dedupe(permIDs)
	if len(permIDs) == 0 {
		return result.BadRequest[models.Role]("the permissions should not be empty")
	}
	n, err := s.permissions.CountIDs(ctx, permIDs)
	if err != nil {
		s.log.Error("permission lookup failed", zap.Error(err), zap.String("role_id", roleID.Hex()))
		return result.Internal[models.Role](err)
	}
	if n != int64(len(permIDs)) {
		return result.BadRequest[models.Role]("not all provided permissions exist, please crosscheck")
	}

	granted := make(map[primitive.ObjectID]bool, len(role.Permissions))
	for _, id := range role.Permissions {
		granted[id] = true
	}
	var already []string
	for _, id := range permIDs {
		if granted[id] {
			already = append(already, id.Hex())
		}
	}
	if len(already) > 0 {
		return result.BadRequest[models.Role](fmt.Sprintf(
			"Some permissions already assigned to the Role %s, they include: %s", roleID.Hex(), strings.Join(already, ",")))
	}

	updated, err := s.roles.AddPermissions(ctx, roleID, permIDs)
	if err != nil {
		s.log.Error("grant permissions failed", zap.Error(err), zap.String("role_id", roleID.Hex()))
		return result.Internal[models.Role](err)
	}
	s.audit.PermissionsGranted(ctx, roleID, permIDs)
	return result.OK("permissions added successfully", updated)
}

// UnassignPermissionFromRole revokes one permission from the role.
func (s *Service) UnassignPermissionFromRole(ctx context.Context, roleID, permID primitive.ObjectID) (res result.Result[models.Role]) {
	done := s.metrics.Start("role.unassign_permission")
	defer func() { done(res.Kind) }()

	role, err := s.roles.GetByID(ctx, roleID)
	if errors.Is(err, rolestore.ErrNotFound) {
		return result.BadRequest[models.Role](fmt.Sprintf("Role %s Not Found", roleID.Hex()))
	}
	if err != nil {
		s.log.Error("role lookup failed", zap.Error(err), zap.String("role_id", roleID.Hex()))
		return result.Internal[models.Role](err)
	}
	if _, err := s.permissions.GetByID(ctx, permID); errors.Is(err, mongo.ErrNoDocuments) {
		return result.BadRequest[models.Role](fmt.Sprintf("Permission %s Not Found", permID.Hex()))
	} else if err != nil {
		s.log.Error("permission lookup failed", zap.Error(err), zap.String("permission_id", permID.Hex()))
		return result.Internal[models.Role](err)
	}

	held := false
	for _, id := range role.Permissions {
		if id == permID {
			held = true
			break
		}
	}
	if !held {
		return result.BadRequest[models.Role](fmt.Sprintf("Permission %s is not assigned to the Role %s", permID.Hex(), roleID.Hex()))
	}

	updated, err := s.roles.PullPermission(ctx, roleID, permID)
	if err != nil {
		s.log.Error("revoke permission failed", zap.Error(err), zap.String("role_id", roleID.Hex()))
		return result.Internal[models.Role](err)
	}
	s.audit.PermissionRevoked(ctx, roleID, permID)
	return result.OK("permission has been unassigned from role", updated)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Permissions                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Service) ListPermissions(ctx context.Context, filter bson.M, page paging.Page) (res result.Result[[]models.Permission]) {
	done := s.metrics.Start("permission.list")
	defer func() { done(res.Kind) }()
	return s.permissions.List(ctx, filter, page)
}

func (s *Service) CreatePermission(ctx context.Context, p models.Permission) (res result.Result[models.Permission]) {
	done := s.metrics.Start("permission.create")
	defer func() { done(res.Kind) }()
	return s.permissions.Create(ctx, p)
}

func (s *Service) UpdatePermission(ctx context.Context, filter, update bson.M) (res result.Result[models.Permission]) {
	done := s.metrics.Start("permission.update")
	defer func() { done(res.Kind) }()
	return s.permissions.Update(ctx, filter, update)
}

// DeletePermission removes a permission and revokes it from every role.
func (s *Service) DeletePermission(ctx context.Context, permID primitive.ObjectID) (res result.Result[models.Permission]) {
	done := s.metrics.Start("permission.delete")
	defer func() { done(res.Kind) }()

	removed := s.permissions.Remove(ctx, bson.M{"_id": permID})
	if !removed.Success() {
		return removed
	}
	n, err := s.roles.PullPermissionEverywhere(ctx, permID)
	if err != nil {
		s.log.Error("revoke deleted permission failed", zap.Error(err), zap.String("permission_id", permID.Hex()))
		return result.Internal[models.Permission](err)
	}
	s.log.Info("permission deleted", zap.String("permission_id", permID.Hex()), zap.Int64("roles", n))
	return removed
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
