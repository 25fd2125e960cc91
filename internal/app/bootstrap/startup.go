// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/dalemusser/accesshub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// accesshub starts the orphan sweep worker here when
// orphan_sweep_interval is positive. Shutdown stops it.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.OrphanSweepInterval <= 0 {
		logger.Info("orphan sweep disabled")
		return nil
	}
	sweep := workers.NewOrphanSweep(sweepDatabases(deps.Tenants, logger), logger, deps.Metrics, appCfg.OrphanSweepInterval)
	sweep.Start()
	if deps.Background != nil {
		deps.Background.OrphanSweep = sweep
	}
	return nil
}

// sweepDatabases returns the database source for the sweep: every tenant
// the registry serves.
func sweepDatabases(reg *tenant.Registry, logger *zap.Logger) func() []*mongo.Database {
	return func() []*mongo.Database {
		dbs, err := tenantDatabases(reg)
		if err != nil {
			logger.Warn("some tenants skipped by the orphan sweep", zap.Error(err))
		}
		return dbs
	}
}
