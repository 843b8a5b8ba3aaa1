package contracts

import (
	"careplan-service/internal/app/models"
	"context"
	"time"
)

type CarePlanJobRepository interface {
	CreateJob(ctx context.Context, job *models.CarePlanJob) (jobID string, err error)
	// FindJobByID returns (nil, nil) when the row is absent.
	FindJobByID(ctx context.Context, jobID string) (*models.CarePlanJob, error)
	// ClaimPending flips pending → processing with a status-guarded update.
	// claimed is false when the job is already claimed, terminal or missing,
	// which makes queue redeliveries of terminal jobs a no-op.
	ClaimPending(ctx context.Context, jobID string) (claimed bool, err error)
	// CompleteJob stores content and flips processing → completed, guarded.
	CompleteJob(ctx context.Context, jobID, content string) error
	// FailJob flips processing → failed, guarded.
	FailJob(ctx context.Context, jobID string) error
	SetRetryCount(ctx context.Context, jobID string, retryCount int) error
	// ListStuck returns jobs sitting in the given status longer than age.
	ListStuck(ctx context.Context, status models.CarePlanJobStatus, age time.Duration) ([]models.CarePlanJob, error)
	ListAllJobs(ctx context.Context) ([]models.CarePlanJob, error)
	CountByStatus(ctx context.Context) (map[models.CarePlanJobStatus]int64, error)
}
