// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/indexes"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"github.com/dalemusser/accesshub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and builds the tenant registry.
//
// The client is shared by every tenant; each tenant gets its own
// database (<mongo_database>_<tenant>) from the registry on first use.
// The connection is verified with a primary ping so a bad URI or an
// unreachable cluster fails startup instead of the first request.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("accesshub").
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize).
		SetServerSelectionTimeout(timeouts.Medium())

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, timeouts.Ping())
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Error("mongo ping failed", zap.Error(err))
		return DBDeps{}, multierr.Append(fmt.Errorf("ping mongo: %w", err), client.Disconnect(context.Background()))
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.String("default_tenant", appCfg.DefaultTenant),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
	)

	return DBDeps{
		MongoClient: client,
		Tenants:     tenant.NewRegistry(client, appCfg.MongoDatabase, appCfg.DefaultTenant, appCfg.Tenants),
		Metrics:     metrics.New(),
		Audit:       auditlog.New(logger, appCfg.AuditLog),
		Background:  &Background{},
	}, nil
}

// EnsureSchema creates the collections, validators and indexes of the
// default tenant and of every tenant listed in the tenants setting. These
// are the only tenants the registry serves.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	dbs, err := tenantDatabases(deps.Tenants)
	if err != nil {
		return err
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Batch(), logger, "ensure schema")
	defer cancel()

	var schemaErr error
	for _, db := range dbs {
		if err := validators.EnsureAll(ctx, db, logger); err != nil {
			schemaErr = multierr.Append(schemaErr, fmt.Errorf("%s: %w", db.Name(), err))
		}
	}
	if err := indexes.EnsureAll(ctx, dbs); err != nil {
		schemaErr = multierr.Append(schemaErr, err)
	}
	if schemaErr != nil {
		logger.Error("ensure schema failed", zap.Error(schemaErr))
		return schemaErr
	}
	logger.Info("schema ensured", zap.Int("tenants", len(dbs)))
	return nil
}

// tenantDatabases resolves every tenant the registry serves.
func tenantDatabases(reg *tenant.Registry) ([]*mongo.Database, error) {
	var (
		dbs  []*mongo.Database
		errs error
	)
	for _, key := range reg.Keys() {
		db, err := reg.DB(key)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tenant %q: %w", key, err))
			continue
		}
		dbs = append(dbs, db)
	}
	return dbs, errs
}
