// internal/app/system/workers/orphansweep.go
package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/accesshub/internal/app/services/membership"
	userstore "github.com/dalemusser/accesshub/internal/app/store/users"
	"github.com/dalemusser/accesshub/internal/app/system/metrics"
	"github.com/dalemusser/accesshub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// OrphanSweep is a background worker that pulls membership entries whose
// group or network reference was cleared.
type OrphanSweep struct {
	databases func() []*mongo.Database
	log       *zap.Logger
	metrics   *metrics.Recorder
	interval  time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewOrphanSweep creates a sweep worker.
//
// Parameters:
//   - databases: returns the tenant databases to sweep on each run
//   - logger: zap logger for logging
//   - rec: metrics recorder (may be nil)
//   - interval: how often to sweep (e.g., 1 hour)
func NewOrphanSweep(databases func() []*mongo.Database, logger *zap.Logger, rec *metrics.Recorder, interval time.Duration) *OrphanSweep {
	return &OrphanSweep{
		databases: databases,
		log:       logger,
		metrics:   rec,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *OrphanSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("orphan sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe
// to call more than once, and on a nil worker.
func (w *OrphanSweep) Stop() {
	if w == nil {
		return
	}
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("orphan sweep worker stopped")
	})
}

func (w *OrphanSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
			_, _ = w.RunOnce(ctx)
			cancel()
		}
	}
}

// RunOnce sweeps every database once and returns the number of users
// that had entries removed. Failures in one database do not stop the
// others; they are combined in the returned error.
func (w *OrphanSweep) RunOnce(ctx context.Context) (int64, error) {
	var (
		total int64
		err   error
	)
	for _, db := range w.databases() {
		svc := membership.New(db, w.log, nil, w.metrics)
		for _, sc := range []userstore.Scope{userstore.GroupScope, userstore.NetworkScope} {
			res := svc.PruneOrphans(ctx, sc)
			if !res.Success() {
				w.log.Error("orphan sweep failed",
					zap.String("database", db.Name()),
					zap.String("scope", sc.Name),
					zap.String("reason", res.Message))
				err = multierr.Append(err, fmt.Errorf("%s: %s sweep: %s", db.Name(), sc.Name, res.Message))
				continue
			}
			total += res.Data
		}
	}
	if total > 0 {
		w.log.Info("pruned orphaned memberships", zap.Int64("users", total))
	}
	return total, err
}
