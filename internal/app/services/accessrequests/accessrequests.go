// Package accessrequests handles invitations to groups and networks. A
// request stays pending until it is approved, which assigns the invitee
// through the membership workflow, or rejected.
package accessrequests

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/accesshub/internal/app/services/membership"
	accessrequeststore "github.com/dalemusser/accesshub/internal/app/store/accessrequests"
	groupstore "github.com/dalemusser/accesshub/internal/app/store/groups"
	networkstore "github.com/dalemusser/accesshub/internal/app/store/networks"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/normalize"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	requests   *accessrequeststore.Store
	users      *userstore.Store
	groups     *groupstore.Store
	networks   *networkstore.Store
	membership *membership.Service
	log        *zap.Logger
	metrics    *metrics.Recorder
}

// New builds a Service for db. audit and rec may be nil.
func New(db *mongo.Database, log *zap.Logger, audit *auditlog.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		requests:   accessrequeststore.New(db),
		users:      userstore.New(db),
		groups:     groupstore.New(db),
		networks:   networkstore.New(db),
		membership: membership.New(db, log, audit, rec),
		log:        log,
		metrics:    rec,
	}
}

func scopeOf(requestType string) userstore.Scope {
	if requestType == accessrequeststore.TypeNetwork {
		return userstore.NetworkScope
	}
	return userstore.GroupScope
}

func (s *Service) targetExists(ctx context.Context, sc userstore.Scope, id primitive.ObjectID) (bool, error) {
	if sc.Name == userstore.NetworkScope.Name {
		return s.networks.Exists(ctx, id)
	}
	return s.groups.Exists(ctx, id)
}

func (s *Service) List(ctx context.Context, filter bson.M, page paging.Page) (res result.Result[[]models.AccessRequest]) {
	done := s.metrics.Start("access_request.list")
	defer func() { done(res.Kind) }()
	return s.requests.List(ctx, filter, page)
}

// Create files a pending request for email to join the group or network
// targetID. An existing account with that email is linked to the request.
func (s *Service) Create(ctx context.Context, requestType string, targetID primitive.ObjectID, email string) (res result.Result[models.AccessRequest]) {
	done := s.metrics.Start("access_request.create")
	defer func() { done(res.Kind) }()

	sc := scopeOf(requestType)
	email = normalize.Email(email)
	if email == "" {
		return result.BadRequest[models.AccessRequest]("the email is required")
	}

	found, err := s.targetExists(ctx, sc, targetID)
	if err != nil {
		s.log.Error("access request target lookup failed", zap.Error(err), zap.String(sc.Name+"_id", targetID.Hex()))
		return result.Internal[models.AccessRequest](err)
	}
	if !found {
		return result.BadRequest[models.AccessRequest](fmt.Sprintf("Invalid %s ID %s, please crosscheck", sc.Name, targetID.Hex()))
	}

	pending, err := s.requests.HasPending(ctx, email, targetID, requestType)
	if err != nil {
		s.log.Error("pending request lookup failed", zap.Error(err), zap.String(sc.Name+"_id", targetID.Hex()))
		return result.Internal[models.AccessRequest](err)
	}
	if pending {
		return result.BadRequest[models.AccessRequest](fmt.Sprintf("Access request was already sent for this %s", sc.Name))
	}

	a := models.AccessRequest{Email: email, TargetID: targetID, RequestType: requestType}
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if userstore.IsMember(user, sc, targetID) {
			return result.BadRequest[models.AccessRequest](fmt.Sprintf("User %s is already a member of this %s", email, sc.Name))
		}
		a.UserID = &user.ID
	case !errors.Is(err, userstore.ErrNotFound):
		s.log.Error("invitee lookup failed", zap.Error(err))
		return result.Internal[models.AccessRequest](err)
	}
	return s.requests.Create(ctx, a)
}

// Decide approves or rejects a pending request. Approval needs a
// registered account for the request's email and assigns it to the
// target before the request is marked approved.
func (s *Service) Decide(ctx context.Context, id primitive.ObjectID, status string) (res result.Result[models.AccessRequest]) {
	done := s.metrics.Start("access_request.decide")
	defer func() { done(res.Kind) }()

	status = normalize.Status(status)
	if status != models.AccessApproved && status != models.AccessRejected {
		return result.BadRequest[models.AccessRequest]("the status must be approved or rejected")
	}

	a, err := s.requests.GetByID(ctx, id)
	if errors.Is(err, accessrequeststore.ErrNotFound) {
		return result.NotFound[models.AccessRequest]("the access request does not exist, please crosscheck")
	}
	if err != nil {
		s.log.Error("access request lookup failed", zap.Error(err), zap.String("request_id", id.Hex()))
		return result.Internal[models.AccessRequest](err)
	}
	if a.Status != models.AccessPending {
		return result.BadRequest[models.AccessRequest](fmt.Sprintf("Access request %s has already been %s", id.Hex(), a.Status))
	}

	var userID *primitive.ObjectID
	if status == models.AccessApproved {
		user, err := s.invitee(ctx, a)
		if errors.Is(err, userstore.ErrNotFound) {
			return result.BadRequest[models.AccessRequest](fmt.Sprintf("No account is registered for %s, the request cannot be approved", a.Email))
		}
		if err != nil {
			s.log.Error("invitee lookup failed", zap.Error(err), zap.String("request_id", id.Hex()))
			return result.Internal[models.AccessRequest](err)
		}
		sc := scopeOf(a.RequestType)
		if !userstore.IsMember(user, sc, a.TargetID) {
			if r := s.membership.AssignOne(ctx, sc, a.TargetID, user.ID); !r.Success() {
				return result.Recast[models.AccessRequest](r)
			}
		}
		userID = &user.ID
	}

	updated, err := s.requests.SetStatus(ctx, id, status, userID)
	if err != nil {
		s.log.Error("access request update failed", zap.Error(err), zap.String("request_id", id.Hex()))
		return result.Internal[models.AccessRequest](err)
	}
	return result.OK("access request "+status, updated)
}

// invitee loads the account a request refers to, by id when linked and
// by email otherwise.
func (s *Service) invitee(ctx context.Context, a models.AccessRequest) (models.User, error) {
	if a.UserID != nil {
		u, err := s.users.GetByID(ctx, *a.UserID)
		if !errors.Is(err, userstore.ErrNotFound) {
			return u, err
		}
	}
	return s.users.GetByEmail(ctx, a.Email)
}

func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (res result.Result[models.AccessRequest]) {
	done := s.metrics.Start("access_request.delete")
	defer func() { done(res.Kind) }()
	return s.requests.Remove(ctx, bson.M{"_id": id})
}
