// Package provisioning creates groups and networks together with their
// SUPER_ADMIN role. Creation runs as a fixed sequence of writes:
//
//  1. resolve the creator
//  2. insert the group or network with the creator as manager
//  3. create the SUPER_ADMIN role scoped to it
//  4. ensure the configured SUPER_ADMIN permissions exist
//  5. attach those permissions to the role
//  6. add the role membership to the creator
//
// A failing step stops the sequence; earlier writes are kept.
package provisioning

import (
	"context"
	"errors"
	"fmt"

	groupstore "github.com/dalemusser/accesshub/internal/app/store/groups"
	networkstore "github.com/dalemusser/accesshub/internal/app/store/networks"
	permissionstore "github.com/dalemusser/accesshub/internal/app/store/permissions"
	rolestore "github.com/dalemusser/accesshub/internal/app/store/roles"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/companyemail"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service provisions groups and networks in one tenant database.
type Service struct {
	users       *userstore.Store
	groups      *groupstore.Store
	networks    *networkstore.Store
	roles       *rolestore.Store
	permissions *permissionstore.Store

	superAdminPermissions []string

	log     *zap.Logger
	audit   *auditlog.Logger
	metrics *metrics.Recorder
}

// New builds a Service for db. permissionNames are the raw names granted
// to every new SUPER_ADMIN role. audit and rec may be nil.
func New(db *mongo.Database, permissionNames []string, log *zap.Logger, audit *auditlog.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		users:                 userstore.New(db),
		groups:                groupstore.New(db),
		networks:              networkstore.New(db),
		roles:                 rolestore.New(db),
		permissions:           permissionstore.New(db),
		superAdminPermissions: permissionNames,
		log:                   log,
		audit:                 audit.ForTenant(db),
		metrics:               rec,
	}
}

// resolveCreator loads the creating user. creatorID is the explicit
// user_id of the request, or the caller when none was given.
func (s *Service) resolveCreator(ctx context.Context, creatorID *primitive.ObjectID) result.Result[models.User] {
	if creatorID == nil || creatorID.IsZero() {
		return result.BadRequest[models.User]("creator's account is not provided")
	}
	u, err := s.users.GetByID(ctx, *creatorID)
	if errors.Is(err, userstore.ErrNotFound) {
		return result.Fail[models.User](result.KindValidation, "Your account is not registered", result.Errors{
			"message": fmt.Sprintf("Your account %s is not registered", creatorID.Hex()),
		})
	}
	if err != nil {
		s.log.Error("creator lookup failed", zap.Error(err), zap.String("user_id", creatorID.Hex()))
		return result.Internal[models.User](err)
	}
	return result.OK("creator resolved", u)
}

// CreateGroup provisions a group owned by the creator.
func (s *Service) CreateGroup(ctx context.Context, g models.Group, creatorID *primitive.ObjectID) (res result.Result[models.Group]) {
	done := s.metrics.Start("group.create")
	defer func() { done(res.Kind) }()

	who := s.resolveCreator(ctx, creatorID)
	if !who.Success() {
		return result.Recast[models.Group](who)
	}
	creator := who.Data

	g.Manager = &creator.ID
	g.ManagerUsername = creator.Email
	g.ManagerFirstName = creator.FirstName
	g.ManagerLastName = creator.LastName

	created := s.groups.Create(ctx, g)
	if !created.Success() {
		return created
	}
	group := created.Data

	if r := s.provision(ctx, userstore.GroupScope, group.ID, creator); !r.Success() {
		return result.Recast[models.Group](r)
	}
	s.audit.GroupCreated(ctx, group.ID, creator.ID, group.Title)
	s.log.Info("group provisioned",
		zap.String("group_id", group.ID.Hex()),
		zap.String("user_id", creator.ID.Hex()),
	)
	return created
}

// CreateNetwork provisions a network owned by the creator. The network's
// name and acronym come from the domain of net_email, which must be a
// company address.
func (s *Service) CreateNetwork(ctx context.Context, n models.Network, creatorID *primitive.ObjectID) (res result.Result[models.Network]) {
	done := s.metrics.Start("network.create")
	defer func() { done(res.Kind) }()

	if n.Email == "" {
		return result.BadRequest[models.Network]("the net_email is required")
	}
	acronym, err := companyemail.Acronym(n.Email)
	switch {
	case errors.Is(err, companyemail.ErrNotCompany):
		return result.BadRequest[models.Network]("You need a company email for this operation")
	case err != nil:
		return result.BadRequest[models.Network]("the net_email is not a valid email address")
	}
	n.Name = acronym
	n.Acronym = acronym

	taken, err := s.networks.WebsiteTaken(ctx, n.Website)
	if err != nil {
		s.log.Error("website lookup failed", zap.Error(err))
		return result.Internal[models.Network](err)
	}
	if taken {
		return result.BadRequest[models.Network](fmt.Sprintf("Network for %s already exists", n.Website))
	}

	who := s.resolveCreator(ctx, creatorID)
	if !who.Success() {
		return result.Recast[models.Network](who)
	}
	creator := who.Data
	n.Manager = &creator.ID
	n.ManagerUsername = creator.Email
	n.ManagerFirstName = creator.FirstName
	n.ManagerLastName = creator.LastName

	created := s.networks.Create(ctx, n)
	if !created.Success() {
		return created
	}
	network := created.Data

	if r := s.provision(ctx, userstore.NetworkScope, network.ID, creator); !r.Success() {
		return result.Recast[models.Network](r)
	}
	s.audit.NetworkCreated(ctx, network.ID, creator.ID, network.Name)
	s.log.Info("network provisioned",
		zap.String("network_id", network.ID.Hex()),
		zap.String("user_id", creator.ID.Hex()),
	)
	return created
}

// provision runs steps 3 to 6 for a freshly inserted entity.
func (s *Service) provision(ctx context.Context, sc userstore.Scope, id primitive.ObjectID, creator models.User) result.Result[models.Role] {
	role := models.Role{Code: models.SuperAdminRole, Name: models.SuperAdminRole}
	if sc.Name == userstore.NetworkScope.Name {
		role.NetworkID = &id
	} else {
		role.GroupID = &id
	}
	created := s.roles.Create(ctx, role)
	if !created.Success() {
		s.log.Warn("super admin role not created",
			zap.String(sc.Name+"_id", id.Hex()),
			zap.String("reason", created.Message),
		)
		return created
	}
	roleID := created.Data.ID

	permIDs, err := s.permissions.EnsureNamed(ctx, s.superAdminPermissions)
	if err != nil {
		s.fail("ensure permissions", sc, id, err)
		return result.Internal[models.Role](err)
	}
	updated, err := s.roles.AddPermissions(ctx, roleID, permIDs)
	if err != nil {
		s.fail("attach permissions", sc, id, err)
		return result.Internal[models.Role](err)
	}
	s.audit.PermissionsGranted(ctx, roleID, permIDs)

	_, err = s.users.AddMembership(ctx, creator.ID, sc, userstore.Membership{
		Entity:   &id,
		Role:     &roleID,
		UserType: models.UserTypeUser,
	})
	if errors.Is(err, userstore.ErrNotFound) {
		return result.Fail[models.Role](result.KindInternal, "Internal Server Error", result.Errors{
			"message": fmt.Sprintf("Unable to assign the %s to the User %s", sc.Name, creator.ID.Hex()),
		})
	}
	if err != nil {
		s.fail("attach creator", sc, id, err)
		return result.Internal[models.Role](err)
	}
	return result.OK("role provisioned", updated)
}

func (s *Service) fail(step string, sc userstore.Scope, id primitive.ObjectID, err error) {
	s.log.Error("provisioning step failed",
		zap.Error(err),
		zap.String("step", step),
		zap.String(sc.Name+"_id", id.Hex()),
	)
}
