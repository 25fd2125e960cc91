// internal/app/features/registries/handler.go

// Package registries serves the plain CRUD collections: locations, hosts
// and unknown IPs. Each is a Handler over its store.
package registries

import (
	"context"

	hoststore "github.com/dalemusser/accesshub/internal/app/store/hosts"
	locationstore "github.com/dalemusser/accesshub/internal/app/store/locations"
	unknownipstore "github.com/dalemusser/accesshub/internal/app/store/unknownips"
	"github.com/dalemusser/accesshub/internal/app/system/filter"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/paging"
	"github.com/dalemusser/accesshub/internal/app/system/result"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Store is the CRUD surface a registry needs.
type Store[T any] interface {
	Create(ctx context.Context, v T) result.Result[T]
	List(ctx context.Context, filter bson.M, page paging.Page) result.Result[[]T]
	Update(ctx context.Context, filter, update bson.M) result.Result[T]
	Remove(ctx context.Context, filter bson.M) result.Result[T]
}

type Handler[T any] struct {
	// Noun labels metrics and timeouts ("location").
	Noun string
	// Param is the path parameter carrying the document id.
	Param string
	// IDFields are update keys holding ObjectIDs.
	IDFields []string

	Filter func(filter.Values) filter.Result
	Open   func(db *mongo.Database) Store[T]

	Log     *zap.Logger
	Metrics *metrics.Recorder
}

func Locations(rec *metrics.Recorder, logger *zap.Logger) *Handler[models.Location] {
	return &Handler[models.Location]{
		Noun:    "location",
		Param:   "location_id",
		Filter:  filter.Locations,
		Open:    func(db *mongo.Database) Store[models.Location] { return locationstore.New(db) },
		Log:     logger,
		Metrics: rec,
	}
}

func Hosts(rec *metrics.Recorder, logger *zap.Logger) *Handler[models.Host] {
	return &Handler[models.Host]{
		Noun:     "host",
		Param:    "host_id",
		IDFields: []string{"site_id"},
		Filter:   filter.Hosts,
		Open:     func(db *mongo.Database) Store[models.Host] { return hoststore.New(db) },
		Log:      logger,
		Metrics:  rec,
	}
}

func UnknownIPs(rec *metrics.Recorder, logger *zap.Logger) *Handler[models.UnknownIP] {
	return &Handler[models.UnknownIP]{
		Noun:    "unknown_ip",
		Param:   "ip_id",
		Filter:  filter.UnknownIPs,
		Open:    func(db *mongo.Database) Store[models.UnknownIP] { return unknownipstore.New(db) },
		Log:     logger,
		Metrics: rec,
	}
}
