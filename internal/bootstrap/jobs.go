package bootstrap

import (
	"context"

	"github.com/osse101/ItemForge_Go/internal/backpack"
	"github.com/osse101/ItemForge_Go/internal/config"
	"github.com/osse101/ItemForge_Go/internal/eventlog"
	"github.com/osse101/ItemForge_Go/internal/scheduler"
	"github.com/osse101/ItemForge_Go/internal/server"
	"github.com/osse101/ItemForge_Go/internal/worker"
)

// Background owns the maintenance worker pool and its scheduler
type Background struct {
	Pool      *worker.Pool
	Scheduler *scheduler.Scheduler
}

// StartBackgroundJobs runs the audit-log cleanup and the ground sweep on the pool right
// away and then on their intervals. A non-positive retention or TTL disables its job.
func StartBackgroundJobs(svc server.Services, cfg *config.Config) *Background {
	pool := worker.NewPool(BackgroundWorkers, BackgroundQueueSize)
	pool.Start()
	sched := scheduler.New(pool)

	if cfg.EventRetentionDays > 0 {
		sched.ScheduleNow(JobNameEventCleanup, cfg.EventCleanupInterval, eventlog.NewCleanupJob(svc.Events, cfg.EventRetentionDays))
	}
	if cfg.GroundItemTTL > 0 {
		sched.ScheduleNow(JobNameGroundSweep, cfg.GroundSweepInterval, backpack.NewGroundSweepJob(svc.Backpack, cfg.GroundItemTTL))
	}

	return &Background{Pool: pool, Scheduler: sched}
}

// Shutdown stops the scheduler first so no new ticks reach the draining pool
func (b *Background) Shutdown(ctx context.Context) error {
	b.Scheduler.Stop()
	return b.Pool.Shutdown(ctx)
}
