package generation

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/models"
	"careplan-service/internal/pkg/constvars"
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Worker drives the per-job state machine. Each pool goroutine owns exactly
// one job from claim to terminal state; FIFO holds at the queue boundary
// only, completion order does not.
type Worker struct {
	queue       contracts.JobQueue
	jobs        contracts.CarePlanJobRepository
	client      contracts.GenerationClient
	storage     contracts.ArtifactStorage
	log         *zap.Logger
	poolSize    int
	maxRetries  int
	baseDelay   time.Duration
	maxDelay    time.Duration
	callTimeout time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	wg          sync.WaitGroup
}

func NewWorker(
	queue contracts.JobQueue,
	jobs contracts.CarePlanJobRepository,
	client contracts.GenerationClient,
	storage contracts.ArtifactStorage,
	cfg config.AppWorker,
	log *zap.Logger,
) *Worker {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	return &Worker{
		queue:       queue,
		jobs:        jobs,
		client:      client,
		storage:     storage,
		log:         log,
		poolSize:    poolSize,
		maxRetries:  cfg.MaxRetries,
		baseDelay:   time.Duration(cfg.RetryBaseDelayInMillis) * time.Millisecond,
		maxDelay:    time.Duration(cfg.RetryMaxDelayInMillis) * time.Millisecond,
		callTimeout: time.Duration(cfg.GenerationTimeoutInSecs) * time.Second,
		sleep:       sleepContext,
	}
}

// Start launches the pool and blocks until the consume channel closes.
func (w *Worker) Start(ctx context.Context) error {
	deliveries, err := w.queue.Consume(ctx)
	if err != nil {
		return err
	}

	for i := 0; i < w.poolSize; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for delivery := range deliveries {
				w.handleDelivery(ctx, delivery)
			}
		}()
	}

	w.wg.Wait()
	return nil
}

// handleDelivery runs one job to a terminal state. Every branch acks the
// delivery; requeueing at the transport level would break the claim guard's
// idempotency story.
func (w *Worker) handleDelivery(ctx context.Context, delivery contracts.JobDelivery) {
	log := w.log.With(zap.String(constvars.LoggingJobIDKey, delivery.JobID))

	claimed, err := w.jobs.ClaimPending(ctx, delivery.JobID)
	if err != nil {
		log.Error("worker claim failed, requeueing delivery", zap.Error(err))
		_ = w.queue.Reject(delivery.DeliveryTag, true)
		return
	}
	if !claimed {
		// Missing row, already claimed, or terminal. Redeliveries of a
		// terminal job must be a no-op: generation may be billed upstream.
		log.Info("worker skipped unclaimable job")
		_ = w.queue.Ack(delivery.DeliveryTag)
		return
	}

	job, err := w.jobs.FindJobByID(ctx, delivery.JobID)
	if err != nil || job == nil {
		log.Error("worker lost job row after claim", zap.Error(err))
		_ = w.jobs.FailJob(ctx, delivery.JobID)
		_ = w.queue.Ack(delivery.DeliveryTag)
		return
	}

	w.runGeneration(ctx, job, log)
	_ = w.queue.Ack(delivery.DeliveryTag)
}

// runGeneration invokes the client with bounded, backed-off retries. Only
// transient failures are retried; a rejected request fails immediately.
func (w *Worker) runGeneration(ctx context.Context, job *models.CarePlanJob, log *zap.Logger) {
	prompt := BuildPrompt(job)

	for attempt := 0; ; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if w.callTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, w.callTimeout)
		}
		content, err := w.client.GeneratePlan(callCtx, prompt)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			if err := w.jobs.CompleteJob(ctx, job.ID, content); err != nil {
				log.Error("worker failed to persist completion", zap.Error(err))
				return
			}
			log.Info("worker completed job",
				zap.Int(constvars.LoggingRetryCountKey, attempt))
			w.archive(ctx, job.ID, content, log)
			return
		}

		if errors.Is(err, contracts.ErrGenerationRejected) {
			log.Warn("worker abandoning rejected job", zap.Error(err))
			_ = w.jobs.FailJob(ctx, job.ID)
			return
		}

		if attempt+1 >= w.maxRetries {
			log.Warn("worker exhausted retries", zap.Error(err),
				zap.Int(constvars.LoggingRetryCountKey, attempt+1))
			_ = w.jobs.SetRetryCount(ctx, job.ID, attempt+1)
			_ = w.jobs.FailJob(ctx, job.ID)
			return
		}

		delay := w.backoff(attempt)
		log.Warn("worker retrying after transient failure", zap.Error(err),
			zap.Int(constvars.LoggingAttemptKey, attempt+1),
			zap.Duration(constvars.LoggingDurationKey, delay))
		_ = w.jobs.SetRetryCount(ctx, job.ID, attempt+1)

		if err := w.sleep(ctx, delay); err != nil {
			_ = w.jobs.FailJob(ctx, job.ID)
			return
		}
	}
}

// backoff doubles the base delay per attempt, caps it, and adds jitter so
// parallel workers do not retry in lockstep.
func (w *Worker) backoff(attempt int) time.Duration {
	delay := w.baseDelay << uint(attempt)
	if delay > w.maxDelay || delay <= 0 {
		delay = w.maxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/4 + 1))
	return delay + jitter
}

func (w *Worker) archive(ctx context.Context, jobID, content string, log *zap.Logger) {
	if w.storage == nil {
		return
	}
	if _, err := w.storage.UploadPlanText(ctx, jobID, []byte(content)); err != nil {
		log.Warn("worker failed to archive plan text", zap.Error(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
