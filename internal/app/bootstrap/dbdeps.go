// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/accesshub/internal/app/system/auditlog"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/ratelimit"
	"github.com/dalemusser/accesshub/internal/app/system/tenant"
	"github.com/dalemusser/accesshub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
//
// ConnectDB fills the client, the tenant registry and the shared
// recorders. Background holds what later hooks start so Shutdown can
// stop it.
type DBDeps struct {
	MongoClient *mongo.Client
	Tenants     *tenant.Registry
	Metrics     *metrics.Recorder
	Audit       *auditlog.Logger

	Background *Background
}

// Background collects the long-lived goroutines owned by the app.
type Background struct {
	OrphanSweep  *workers.OrphanSweep
	LoginLimiter *ratelimit.LoginLimiter
	APILimiter   *ratelimit.Limiter
}

// Stop stops everything that was started. Nil members are skipped.
func (b *Background) Stop() {
	if b == nil {
		return
	}
	b.OrphanSweep.Stop()
	if b.LoginLimiter != nil {
		b.LoginLimiter.Stop()
	}
	if b.APILimiter != nil {
		b.APILimiter.Stop()
	}
}
