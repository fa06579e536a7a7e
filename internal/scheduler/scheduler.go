// Package scheduler runs periodic maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crucial707/phonebook/internal/metrics"
)

// Pruner deletes audit rows older than cutoff. *repo.AuditRepo implements it.
type Pruner interface {
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// pruneTimeout bounds a single prune run.
const pruneTimeout = 30 * time.Second

// AuditPruner removes audit entries older than Retention.
type AuditPruner struct {
	Store     Pruner
	Retention time.Duration
	Now       func() time.Time
}

// PruneOnce deletes expired audit rows and returns how many were removed.
func (p *AuditPruner) PruneOnce(ctx context.Context) (int64, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	n, err := p.Store.PruneBefore(ctx, now().Add(-p.Retention))
	if err != nil {
		return 0, err
	}
	metrics.AddAuditPruned(n)
	return n, nil
}

// Disabled turns pruning off when passed as the cron expression.
const Disabled = "off"

// Run schedules PruneOnce on cronExpr and blocks until ctx is done. An empty or
// Disabled cronExpr, or a non-positive retention, returns immediately.
func Run(ctx context.Context, cronExpr string, p *AuditPruner) error {
	if cronExpr == "" || cronExpr == Disabled || p.Retention <= 0 {
		slog.Info("scheduler: audit pruning disabled")
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(cronExpr, func() {
		runCtx, cancel := context.WithTimeout(ctx, pruneTimeout)
		defer cancel()
		n, err := p.PruneOnce(runCtx)
		if err != nil {
			slog.Error("scheduler: prune audit log", "error", err)
			return
		}
		slog.Info("scheduler: pruned audit log", "removed", n, "retention", p.Retention.String())
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid cron expression %q: %w", cronExpr, err)
	}

	slog.Info("scheduler: audit pruning scheduled", "cron", cronExpr, "retention", p.Retention.String())
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
