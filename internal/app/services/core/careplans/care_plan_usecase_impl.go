package careplans

import (
	"bytes"
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/models"
	"careplan-service/internal/app/services/core/validation"
	"careplan-service/internal/app/services/shared/ratelimiter"
	"careplan-service/internal/pkg/constvars"
	"careplan-service/internal/pkg/dto/requests"
	"careplan-service/internal/pkg/dto/responses"
	"careplan-service/internal/pkg/exceptions"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type carePlanUsecase struct {
	engine        *validation.Engine
	limiter       *ratelimiter.SubmissionLimiter
	providerRepo  contracts.ProviderRepository
	patientRepo   contracts.PatientRepository
	orderRepo     contracts.OrderRepository
	jobRepo       contracts.CarePlanJobRepository
	queue         contracts.JobQueue
	log           *zap.Logger
	retryAttempts int
}

func NewCarePlanUsecase(
	engine *validation.Engine,
	limiter *ratelimiter.SubmissionLimiter,
	providerRepo contracts.ProviderRepository,
	patientRepo contracts.PatientRepository,
	orderRepo contracts.OrderRepository,
	jobRepo contracts.CarePlanJobRepository,
	queue contracts.JobQueue,
	cfg config.AppCarePlan,
	logger *zap.Logger,
) contracts.CarePlanUsecase {
	retryAttempts := cfg.ValidationRetryAttempts
	if retryAttempts <= 0 {
		retryAttempts = 1
	}
	return &carePlanUsecase{
		engine:        engine,
		limiter:       limiter,
		providerRepo:  providerRepo,
		patientRepo:   patientRepo,
		orderRepo:     orderRepo,
		jobRepo:       jobRepo,
		queue:         queue,
		log:           logger,
		retryAttempts: retryAttempts,
	}
}

// SubmitCarePlan runs the admission path: rate limit, duplicate validation,
// gate decision, then persistence plus enqueue for admitted requests. The
// store's unique indexes are the authoritative duplicate backstop; an insert
// conflict re-runs validation rather than assuming the pre-check held.
func (uc *carePlanUsecase) SubmitCarePlan(ctx context.Context, request *requests.CreateCarePlanRequest) (*responses.SubmitCarePlanResponse, error) {
	allow, err := uc.limiter.Allow(ctx)
	if err != nil {
		return nil, err
	}
	if !allow.Allowed {
		return &responses.SubmitCarePlanResponse{Outcome: contracts.OutcomeRateLimited}, nil
	}

	dob, err := request.ParsedDOB()
	if err != nil {
		return nil, exceptions.ErrCannotParseDate(err)
	}

	input := validation.EvaluateInput{
		ProviderName:     request.ProviderName,
		ProviderNPI:      request.ProviderNPI,
		PatientFirstName: request.PatientFirstName,
		PatientLastName:  request.PatientLastName,
		PatientMRN:       request.PatientMRN,
		PatientDOB:       dob,
		MedicationName:   request.MedicationName,
		Confirm:          request.Confirm,
	}

	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		result, err := uc.engine.Evaluate(ctx, input)
		if err != nil {
			return nil, err
		}

		decision := validation.Decide(result, request.Confirm)
		switch decision {
		case validation.DecisionBlock:
			return &responses.SubmitCarePlanResponse{
				Outcome:  contracts.OutcomeBlocked,
				Findings: toFindingDTOs(result.Items()),
			}, nil
		case validation.DecisionRequiresConfirmation:
			return &responses.SubmitCarePlanResponse{
				Outcome:  contracts.OutcomeNeedsConfirmation,
				Findings: toFindingDTOs(result.Items()),
			}, nil
		}

		jobID, err := uc.admit(ctx, request, dob, result)
		if err != nil {
			if exceptions.IsConflict(err) {
				// Another admission won the unique index race. Re-run the
				// checks so the duplicate is classified, not silently reused.
				uc.log.Warn("carePlanUsecase.SubmitCarePlan conflict, revalidating",
					zap.Int(constvars.LoggingAttemptKey, attempt+1))
				continue
			}
			return nil, err
		}

		return &responses.SubmitCarePlanResponse{
			Outcome:  contracts.OutcomeAdmitted,
			JobID:    jobID,
			Findings: toFindingDTOs(result.Items()),
		}, nil
	}

	return nil, exceptions.ErrValidationRetryExhausted(nil)
}

// admit persists the entity triple, reusing records the checks resolved, then
// creates the job row and enqueues its id. An enqueue failure surfaces as a
// retryable submission error while the pending row stays behind for the
// sweep.
func (uc *carePlanUsecase) admit(ctx context.Context, request *requests.CreateCarePlanRequest, dob time.Time, result *validation.ValidationResult) (string, error) {
	providerID := ""
	providerName := request.ProviderName
	if result.ReusableProvider != nil {
		providerID = result.ReusableProvider.ID
		providerName = result.ReusableProvider.Name
	} else {
		id, err := uc.providerRepo.CreateProvider(ctx, &models.Provider{
			Name: request.ProviderName,
			NPI:  request.ProviderNPI,
		})
		if err != nil {
			return "", err
		}
		providerID = id
	}

	patientID := ""
	if result.ReusablePatient != nil {
		patientID = result.ReusablePatient.ID
	} else {
		id, err := uc.patientRepo.CreatePatient(ctx, &models.Patient{
			FirstName:   request.PatientFirstName,
			LastName:    request.PatientLastName,
			MRN:         request.PatientMRN,
			DateOfBirth: dob,
		})
		if err != nil {
			return "", err
		}
		patientID = id
	}

	orderID, err := uc.orderRepo.CreateOrder(ctx, &models.Order{
		PatientID:           patientID,
		ProviderID:          providerID,
		MedicationName:      request.MedicationName,
		PrimaryDiagnosis:    request.PrimaryDiagnosis,
		AdditionalDiagnosis: request.AdditionalDiagnosis,
		MedicationHistory:   request.MedicationHistory,
		ClinicalNotes:       request.ClinicalNotes,
	})
	if err != nil {
		return "", err
	}

	jobID, err := uc.jobRepo.CreateJob(ctx, &models.CarePlanJob{
		OrderID:             orderID,
		PatientFirstName:    request.PatientFirstName,
		PatientLastName:     request.PatientLastName,
		PatientDOB:          dob,
		PatientMRN:          request.PatientMRN,
		ReferringProvider:   providerName,
		ReferringNPI:        request.ProviderNPI,
		MedicationName:      request.MedicationName,
		PrimaryDiagnosis:    request.PrimaryDiagnosis,
		AdditionalDiagnosis: request.AdditionalDiagnosis,
		MedicationHistory:   request.MedicationHistory,
		ClinicalNotes:       request.ClinicalNotes,
	})
	if err != nil {
		return "", err
	}

	if err := uc.queue.Enqueue(ctx, jobID); err != nil {
		uc.log.Error("carePlanUsecase.admit enqueue failed, job left pending for sweep",
			zap.String(constvars.LoggingJobIDKey, jobID),
			zap.Error(err))
		return "", exceptions.ErrSubmissionNotScheduled(err)
	}

	uc.log.Info("carePlanUsecase.admit scheduled generation",
		zap.String(constvars.LoggingJobIDKey, jobID))
	return jobID, nil
}

func toFindingDTOs(items []validation.ValidationItem) []responses.FindingDTO {
	out := make([]responses.FindingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, responses.FindingDTO{
			Level:   string(item.Level),
			Code:    item.Code,
			Message: item.Message,
		})
	}
	return out
}

func (uc *carePlanUsecase) GetCarePlanStatus(ctx context.Context, jobID string) (*responses.CarePlanStatusResponse, error) {
	job, err := uc.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, exceptions.ErrCarePlanNotFound(nil)
	}

	resp := &responses.CarePlanStatusResponse{
		JobID:      job.ID,
		Status:     string(job.Status),
		RetryCount: job.RetryCount,
		CreatedAt:  job.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  job.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if job.Status == models.CarePlanJobStatusCompleted {
		resp.Content = job.GeneratedContent
	}
	return resp, nil
}

func (uc *carePlanUsecase) DownloadCarePlan(ctx context.Context, jobID string) (string, []byte, error) {
	job, err := uc.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return "", nil, err
	}
	if job == nil {
		return "", nil, exceptions.ErrCarePlanNotFound(nil)
	}
	if job.Status != models.CarePlanJobStatusCompleted {
		return "", nil, exceptions.ErrCarePlanNotReady()
	}

	filename := fmt.Sprintf("care_plan_%s_%s.txt", job.PatientLastName, job.ID)
	return filename, []byte(job.GeneratedContent), nil
}

// ExportCarePlansCSV renders every job as one CSV row. Generated content is
// excluded; the download endpoint serves it per job.
func (uc *carePlanUsecase) ExportCarePlansCSV(ctx context.Context) ([]byte, error) {
	jobs, err := uc.jobRepo.ListAllJobs(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"job_id", "status", "patient_first_name", "patient_last_name", "patient_mrn", "referring_provider", "referring_npi", "medication_name", "primary_diagnosis", "retry_count", "created_at", "updated_at"}
	if err := writer.Write(header); err != nil {
		return nil, exceptions.ErrServerProcess(err)
	}

	for _, job := range jobs {
		row := []string{
			job.ID,
			string(job.Status),
			job.PatientFirstName,
			job.PatientLastName,
			job.PatientMRN,
			job.ReferringProvider,
			job.ReferringNPI,
			job.MedicationName,
			job.PrimaryDiagnosis,
			strconv.Itoa(job.RetryCount),
			job.CreatedAt.UTC().Format(time.RFC3339),
			job.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, exceptions.ErrServerProcess(err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, exceptions.ErrServerProcess(err)
	}
	return buf.Bytes(), nil
}

func (uc *carePlanUsecase) GetCarePlanStats(ctx context.Context) (*responses.CarePlanStatsResponse, error) {
	counts, err := uc.jobRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	queueLength, err := uc.queue.Length(ctx)
	if err != nil {
		uc.log.Warn("carePlanUsecase.GetCarePlanStats queue length unavailable", zap.Error(err))
		queueLength = -1
	}

	return &responses.CarePlanStatsResponse{
		Pending:     counts[models.CarePlanJobStatusPending],
		Processing:  counts[models.CarePlanJobStatusProcessing],
		Completed:   counts[models.CarePlanJobStatusCompleted],
		Failed:      counts[models.CarePlanJobStatusFailed],
		QueueLength: queueLength,
	}, nil
}
