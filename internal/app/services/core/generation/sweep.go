package generation

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/models"
	"careplan-service/internal/pkg/constvars"
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweep re-enqueues pending jobs whose enqueue was lost, closing the gap
// between the job row insert and the queue publish. It also surfaces jobs
// stuck in processing after a worker crash; those are reported, not touched,
// since a claimed job must run to a terminal state.
type Sweep struct {
	jobs          contracts.CarePlanJobRepository
	queue         contracts.JobQueue
	locker        contracts.LockerService
	log           *zap.Logger
	interval      time.Duration
	pendingAge    time.Duration
	processingAge time.Duration
	stopCh        chan struct{}
}

func NewSweep(
	jobs contracts.CarePlanJobRepository,
	queue contracts.JobQueue,
	locker contracts.LockerService,
	cfg config.AppWorker,
	log *zap.Logger,
) *Sweep {
	return &Sweep{
		jobs:          jobs,
		queue:         queue,
		locker:        locker,
		log:           log,
		interval:      time.Duration(cfg.SweepIntervalInSeconds) * time.Second,
		pendingAge:    time.Duration(cfg.PendingRequeueAgeInSecs) * time.Second,
		processingAge: time.Duration(cfg.ProcessingStaleAgeInSecs) * time.Second,
		stopCh:        make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
// Multiple instances may run; the Redis leader lock ensures only one sweeps
// per interval.
func (s *Sweep) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweep) Stop() {
	close(s.stopCh)
}

func (s *Sweep) runOnce(ctx context.Context) {
	locked, lockValue, err := s.locker.TryLock(ctx, constvars.RedisKeySweepLeaderLock, s.interval)
	if err != nil {
		s.log.Error("sweep leader lock failed", zap.Error(err))
		return
	}
	if !locked {
		return
	}
	defer func() {
		if err := s.locker.Unlock(ctx, constvars.RedisKeySweepLeaderLock, lockValue); err != nil {
			s.log.Warn("sweep leader unlock failed", zap.Error(err))
		}
	}()

	s.requeuePending(ctx)
	s.reportStaleProcessing(ctx)
}

func (s *Sweep) requeuePending(ctx context.Context) {
	stale, err := s.jobs.ListStuck(ctx, models.CarePlanJobStatusPending, s.pendingAge)
	if err != nil {
		s.log.Error("sweep failed to list stale pending jobs", zap.Error(err))
		return
	}

	for _, job := range stale {
		if err := s.queue.Enqueue(ctx, job.ID); err != nil {
			s.log.Error("sweep failed to re-enqueue pending job", zap.Error(err),
				zap.String(constvars.LoggingJobIDKey, job.ID))
			continue
		}
		// Touch updatedAt so the job does not re-qualify next interval while
		// it waits in the queue.
		if err := s.jobs.SetRetryCount(ctx, job.ID, job.RetryCount); err != nil {
			s.log.Warn("sweep failed to touch requeued job", zap.Error(err),
				zap.String(constvars.LoggingJobIDKey, job.ID))
		}
		s.log.Info("sweep re-enqueued stale pending job",
			zap.String(constvars.LoggingJobIDKey, job.ID))
	}
}

func (s *Sweep) reportStaleProcessing(ctx context.Context) {
	stuck, err := s.jobs.ListStuck(ctx, models.CarePlanJobStatusProcessing, s.processingAge)
	if err != nil {
		s.log.Error("sweep failed to list stale processing jobs", zap.Error(err))
		return
	}
	for _, job := range stuck {
		s.log.Warn("job stuck in processing, likely worker crash",
			zap.String(constvars.LoggingJobIDKey, job.ID),
			zap.Int(constvars.LoggingRetryCountKey, job.RetryCount))
	}
}
