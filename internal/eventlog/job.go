package eventlog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/osse101/ItemForge_Go/internal/logger"
)

// CleanupJob prunes audit entries past the retention window. It satisfies
// worker.Job; a pass that starts while another is still running is skipped.
type CleanupJob struct {
	service       Service
	retentionDays int

	running      atomic.Bool
	totalDeleted atomic.Int64
	lastRun      atomic.Int64
}

// NewCleanupJob creates a cleanup job for the given retention
func NewCleanupJob(service Service, retentionDays int) *CleanupJob {
	return &CleanupJob{service: service, retentionDays: retentionDays}
}

// Process runs one cleanup pass
func (j *CleanupJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if !j.running.CompareAndSwap(false, true) {
		log.Info(LogMsgCleanupJobOverlap)
		return nil
	}
	defer j.running.Store(false)

	start := time.Now()
	count, err := j.service.CleanupOldEvents(ctx, j.retentionDays)
	duration := time.Since(start)
	if err != nil {
		log.Error(LogMsgCleanupJobFailed, LogFieldError, err, LogFieldRetentionDays, j.retentionDays, LogFieldDuration, duration)
		return err
	}

	j.totalDeleted.Add(count)
	j.lastRun.Store(start.Unix())
	log.Info(LogMsgCleanupJobCompleted,
		LogFieldRetentionDays, j.retentionDays,
		LogFieldDeletedCount, count,
		LogFieldDuration, duration)
	return nil
}

// TotalDeleted is the number of entries removed across all passes
func (j *CleanupJob) TotalDeleted() int64 {
	return j.totalDeleted.Load()
}

// LastRun is when the last successful pass started, zero before the first one
func (j *CleanupJob) LastRun() time.Time {
	if ts := j.lastRun.Load(); ts != 0 {
		return time.Unix(ts, 0)
	}
	return time.Time{}
}
