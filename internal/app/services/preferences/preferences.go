// Package preferences stores per-user dashboard selections.
package preferences

import (
	"context"

	preferencestore "github.com/dalemusser/accesshub/internal/app/store/preferences"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	prefs   *preferencestore.Store
	users   *userstore.Store
	log     *zap.Logger
	metrics *metrics.Recorder
}

// New builds a Service for db. rec may be nil.
func New(db *mongo.Database, log *zap.Logger, rec *metrics.Recorder) *Service {
	return &Service{
		prefs:   preferencestore.New(db),
		users:   userstore.New(db),
		log:     log,
		metrics: rec,
	}
}

func (s *Service) List(ctx context.Context, filter bson.M, page paging.Page) (res result.Result[[]models.Preference]) {
	done := s.metrics.Start("preference.list")
	defer func() { done(res.Kind) }()
	return s.prefs.List(ctx, filter, page)
}

// Create stores p for an existing user.
func (s *Service) Create(ctx context.Context, p models.Preference) (res result.Result[models.Preference]) {
	done := s.metrics.Start("preference.create")
	defer func() { done(res.Kind) }()

	if p.UserID.IsZero() {
		return result.BadRequest[models.Preference]("The provided User does not exist")
	}
	found, err := s.users.Exists(ctx, p.UserID)
	if err != nil {
		s.log.Error("preference owner lookup failed", zap.Error(err), zap.String("user_id", p.UserID.Hex()))
		return result.Internal[models.Preference](err)
	}
	if !found {
		return result.Fail[models.Preference](result.KindValidation, "Bad Request Error", result.Errors{
			"message": "The provided User does not exist",
			"value":   p.UserID.Hex(),
		})
	}
	return s.prefs.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, filter, update bson.M) (res result.Result[models.Preference]) {
	done := s.metrics.Start("preference.update")
	defer func() { done(res.Kind) }()
	return s.prefs.Update(ctx, filter, update)
}

// Upsert merges p into the preference selected by filter, creating it
// when absent.
func (s *Service) Upsert(ctx context.Context, filter bson.M, p models.Preference) (res result.Result[models.Preference]) {
	done := s.metrics.Start("preference.upsert")
	defer func() { done(res.Kind) }()

	res = s.prefs.Upsert(ctx, filter, p)
	if res.Kind == result.KindInternal {
		s.log.Error("preference upsert failed", zap.String("reason", res.Errors["message"]))
	}
	return res
}

func (s *Service) Delete(ctx context.Context, filter bson.M) (res result.Result[models.Preference]) {
	done := s.metrics.Start("preference.delete")
	defer func() { done(res.Kind) }()
	return s.prefs.Remove(ctx, filter)
}
