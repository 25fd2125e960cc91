package membership

import (
	"context"
	"errors"
	"fmt"

	networkstore "github.com/dalemusser/accesshub/internal/app/store/networks"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/companyemail"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SetNetworkManager makes a member of the network its manager.
func (s *Service) SetNetworkManager(ctx context.Context, netID, userID primitive.ObjectID) (res result.Result[models.Network]) {
	sc := userstore.NetworkScope
	done := s.metrics.Start("network.set_manager")
	defer func() { done(res.Kind) }()

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, userstore.ErrNotFound) {
		return result.BadRequest[models.Network]("User not found")
	}
	if err != nil {
		s.internal("set_manager", sc, netID, err)
		return result.Internal[models.Network](err)
	}
	network, err := s.networks.GetByID(ctx, netID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return result.BadRequest[models.Network]("Network not found")
	}
	if err != nil {
		s.internal("set_manager", sc, netID, err)
		return result.Internal[models.Network](err)
	}

	if network.Manager != nil && *network.Manager == userID {
		return result.BadRequest[models.Network](fmt.Sprintf("User %s is already the network manager", userID.Hex()))
	}
	if !userstore.IsMember(user, sc, netID) {
		return result.BadRequest[models.Network](fmt.Sprintf(
			"Network %s is not part of User's networks, not authorized to manage this network", netID.Hex()))
	}

	updated, err := s.networks.SetManager(ctx, netID, user)
	if errors.Is(err, networkstore.ErrNotFound) {
		return result.BadRequest[models.Network]("No network record was updated")
	}
	if err != nil {
		s.internal("set_manager", sc, netID, err)
		return result.Internal[models.Network](err)
	}
	s.audit.NetworkManagerSet(ctx, netID, userID)
	return result.OK("User assigned to Network successfully", updated)
}

// NetworkUsers is the outcome of a network refresh.
type NetworkUsers struct {
	Network models.Network       `json:"network"`
	Users   []primitive.ObjectID `json:"net_users"`
	Pruned  int64                `json:"pruned_entries"`
}

// RefreshNetwork prunes orphaned network entries and returns the network
// with the current set of member ids.
func (s *Service) RefreshNetwork(ctx context.Context, netID primitive.ObjectID) (res result.Result[NetworkUsers]) {
	sc := userstore.NetworkScope
	done := s.metrics.Start("network.refresh")
	defer func() { done(res.Kind) }()

	network, err := s.networks.GetByID(ctx, netID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return result.BadRequest[NetworkUsers](fmt.Sprintf("Invalid network ID %s, please crosscheck", netID.Hex()))
	}
	if err != nil {
		s.internal("refresh", sc, netID, err)
		return result.Internal[NetworkUsers](err)
	}

	pruned, err := s.users.PullOrphans(ctx, sc)
	if err != nil {
		s.internal("refresh", sc, netID, err)
		return result.Internal[NetworkUsers](err)
	}
	ids, err := s.users.MemberIDs(ctx, sc, netID)
	if err != nil {
		s.internal("refresh", sc, netID, err)
		return result.Internal[NetworkUsers](err)
	}
	s.log.Info("network refreshed",
		zap.String("network_id", netID.Hex()),
		zap.Int("members", len(ids)),
		zap.Int64("pruned", pruned),
	)
	return result.OK(
		fmt.Sprintf("Successfully refreshed the network %s users' details", netID.Hex()),
		NetworkUsers{Network: network, Users: ids, Pruned: pruned},
	)
}

// NetworkFromEmail resolves the network whose acronym matches the domain
// of a company email. Data is the network's name, or empty when none
// matches.
func (s *Service) NetworkFromEmail(ctx context.Context, email string) (res result.Result[string]) {
	done := s.metrics.Start("network.find_by_email")
	defer func() { done(res.Kind) }()

	acronym, err := companyemail.Acronym(email)
	switch {
	case errors.Is(err, companyemail.ErrNotCompany):
		return result.BadRequest[string]("You need a company email for this operation")
	case err != nil:
		return result.BadRequest[string]("the net_email is not a valid email address")
	}

	network, err := s.networks.FindByAcronym(ctx, acronym)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return result.OK("No network exists for this operation", "")
	}
	if err != nil {
		s.log.Error("network lookup failed", zap.Error(err), zap.String("acronym", acronym))
		return result.Internal[string](err)
	}
	name := network.Name
	if name == "" {
		name = network.Acronym
	}
	return result.OK("successfully retrieved the network", name)
}
