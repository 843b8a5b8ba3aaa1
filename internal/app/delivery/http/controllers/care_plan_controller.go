package controllers

import (
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/pkg/constvars"
	"careplan-service/internal/pkg/dto/requests"
	"careplan-service/internal/pkg/dto/responses"
	"careplan-service/internal/pkg/exceptions"
	"careplan-service/internal/pkg/utils"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type CarePlanController struct {
	Log             *zap.Logger
	CarePlanUsecase contracts.CarePlanUsecase
}

var (
	carePlanControllerInstance *CarePlanController
	onceCarePlanController     sync.Once
)

func NewCarePlanController(logger *zap.Logger, carePlanUsecase contracts.CarePlanUsecase) *CarePlanController {
	onceCarePlanController.Do(func() {
		instance := &CarePlanController{
			Log:             logger,
			CarePlanUsecase: carePlanUsecase,
		}
		carePlanControllerInstance = instance
	})
	return carePlanControllerInstance
}

// Submit maps the usecase outcome to a transport status: admitted is 201,
// needs_confirmation 200, blocked 409, rate_limited 429.
func (ctrl *CarePlanController) Submit(w http.ResponseWriter, r *http.Request) {
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	ctrl.Log.Info("CarePlanController.Submit called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	var request requests.CreateCarePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(&request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	result, err := ctrl.CarePlanUsecase.SubmitCarePlan(ctx, &request)
	if err != nil {
		ctrl.Log.Error("CarePlanController.Submit error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("CarePlanController.Submit decided",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOutcomeKey, result.Outcome),
	)

	switch result.Outcome {
	case contracts.OutcomeAdmitted:
		utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CarePlanSubmittedSuccessMessage, result)
	case contracts.OutcomeNeedsConfirmation:
		utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CarePlanNeedsConfirmationMessage, result)
	case contracts.OutcomeBlocked:
		writeOutcome(w, constvars.StatusConflict, result)
	case contracts.OutcomeRateLimited:
		w.Header().Set(constvars.HeaderRetryAfter, "60")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrTooManyRequests())
	default:
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerProcess(fmt.Errorf("unknown outcome %q", result.Outcome)))
	}
}

func (ctrl *CarePlanController) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, constvars.URLParamCarePlanID)
	if jobID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDMissing(constvars.URLParamCarePlanID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.CarePlanUsecase.GetCarePlanStatus(ctx, jobID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CarePlanStatusFetchedSuccessMessage, result)
}

func (ctrl *CarePlanController) Download(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, constvars.URLParamCarePlanID)
	if jobID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDMissing(constvars.URLParamCarePlanID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filename, content, err := ctrl.CarePlanUsecase.DownloadCarePlan(ctx, jobID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	w.Header().Set(constvars.HeaderContentType, constvars.MIMETextPlain)
	w.Header().Set(constvars.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(constvars.StatusOK)
	w.Write(content)
}

func (ctrl *CarePlanController) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	content, err := ctrl.CarePlanUsecase.ExportCarePlansCSV(ctx)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	filename := fmt.Sprintf("care_plans_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set(constvars.HeaderContentType, constvars.MIMETextCSV)
	w.Header().Set(constvars.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(constvars.StatusOK)
	w.Write(content)
}

func (ctrl *CarePlanController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ctrl.CarePlanUsecase.GetCarePlanStats(ctx)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CarePlanStatsFetchedSuccessMessage, result)
}

// writeOutcome writes a non-success envelope that still carries the findings
// payload, so a blocked caller sees every problem at once.
func writeOutcome(w http.ResponseWriter, code int, result *responses.SubmitCarePlanResponse) {
	response := responses.ResponseDTO{
		Success: false,
		Message: constvars.ErrClientRecordConflict,
		Data:    result,
	}
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}
