package backpack

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/osse101/ItemForge_Go/internal/logger"
)

// GroundSweepJob destroys ground items older than the TTL. It satisfies worker.Job;
// a pass that starts while another is still running is skipped.
type GroundSweepJob struct {
	service Service
	ttl     time.Duration
	now     func() time.Time

	running      atomic.Bool
	totalExpired atomic.Int64
}

// NewGroundSweepJob creates a sweep job for the given TTL
func NewGroundSweepJob(service Service, ttl time.Duration) *GroundSweepJob {
	return &GroundSweepJob{service: service, ttl: ttl, now: time.Now}
}

// Process runs one sweep pass
func (j *GroundSweepJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if !j.running.CompareAndSwap(false, true) {
		log.Info(LogMsgGroundSweepOverlap)
		return nil
	}
	defer j.running.Store(false)

	start := j.now()
	count, err := j.service.ExpireGround(ctx, start.Add(-j.ttl))
	j.totalExpired.Add(int64(count))
	duration := time.Since(start)
	if err != nil {
		log.Error(LogMsgGroundSweepFailed, LogFieldError, err, LogFieldTTL, j.ttl, LogFieldExpired, count)
		return err
	}
	log.Info(LogMsgGroundSweepCompleted, LogFieldTTL, j.ttl, LogFieldExpired, count, LogFieldDuration, duration)
	return nil
}

// TotalExpired is the number of items destroyed across all passes
func (j *GroundSweepJob) TotalExpired() int64 {
	return j.totalExpired.Load()
}
