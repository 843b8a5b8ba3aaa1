package contracts

import (
	"careplan-service/internal/pkg/dto/requests"
	"careplan-service/internal/pkg/dto/responses"
	"context"
)

// Submission outcomes as returned to the delivery layer. The controller maps
// each variant to a transport status; no error-type inspection happens there.
const (
	OutcomeAdmitted          = "admitted"
	OutcomeBlocked           = "blocked"
	OutcomeNeedsConfirmation = "needs_confirmation"
	OutcomeRateLimited       = "rate_limited"
)

type CarePlanUsecase interface {
	SubmitCarePlan(ctx context.Context, request *requests.CreateCarePlanRequest) (*responses.SubmitCarePlanResponse, error)
	GetCarePlanStatus(ctx context.Context, jobID string) (*responses.CarePlanStatusResponse, error)
	// DownloadCarePlan returns the plan text for a completed job.
	DownloadCarePlan(ctx context.Context, jobID string) (filename string, content []byte, err error)
	ExportCarePlansCSV(ctx context.Context) ([]byte, error)
	GetCarePlanStats(ctx context.Context) (*responses.CarePlanStatsResponse, error)
}
