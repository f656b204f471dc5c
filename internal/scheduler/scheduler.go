package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/worker"
)

// Scheduler enqueues jobs on a worker pool at fixed intervals
type Scheduler struct {
	workerPool *worker.Pool
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New creates a new scheduler
func New(pool *worker.Pool) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run every interval, starting one interval from now.
// A tick is skipped when the pool queue is full so a slow job cannot pile up behind itself.
func (s *Scheduler) Schedule(name string, interval time.Duration, job worker.Job) {
	if interval <= 0 {
		slog.Warn(LogMsgScheduleDisabled, "job", name)
		return
	}
	job = named(name, job)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !s.workerPool.TryEnqueue(job) {
					slog.Warn(LogMsgTickSkipped, "job", name)
				}
			case <-s.quit:
				return
			}
		}
	}()
	slog.Info(LogMsgJobScheduled, "job", name, "interval", interval)
}

// ScheduleNow queues one run right away and then behaves like Schedule
func (s *Scheduler) ScheduleNow(name string, interval time.Duration, job worker.Job) {
	if !s.workerPool.TryEnqueue(named(name, job)) {
		slog.Warn(LogMsgTickSkipped, "job", name)
	}
	s.Schedule(name, interval, job)
}

// named tags every run's context with the job name
func named(name string, job worker.Job) worker.Job {
	return worker.JobFunc(func(ctx context.Context) error {
		return job.Process(logger.WithJob(ctx, name))
	})
}

// Stop stops all scheduled jobs
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
	s.wg.Wait()
}
