package controllers

import (
	"bytes"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/pkg/dto/requests"
	"careplan-service/internal/pkg/dto/responses"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUsecase struct {
	submitResponse *responses.SubmitCarePlanResponse
}

func (s *stubUsecase) SubmitCarePlan(ctx context.Context, request *requests.CreateCarePlanRequest) (*responses.SubmitCarePlanResponse, error) {
	return s.submitResponse, nil
}

func (s *stubUsecase) GetCarePlanStatus(ctx context.Context, jobID string) (*responses.CarePlanStatusResponse, error) {
	return &responses.CarePlanStatusResponse{JobID: jobID, Status: "pending"}, nil
}

func (s *stubUsecase) DownloadCarePlan(ctx context.Context, jobID string) (string, []byte, error) {
	return "care_plan.txt", []byte("plan"), nil
}

func (s *stubUsecase) ExportCarePlansCSV(ctx context.Context) ([]byte, error) {
	return []byte("job_id\n"), nil
}

func (s *stubUsecase) GetCarePlanStats(ctx context.Context) (*responses.CarePlanStatsResponse, error) {
	return &responses.CarePlanStatsResponse{}, nil
}

var testUsecase = &stubUsecase{}

func testController() *CarePlanController {
	return NewCarePlanController(zap.NewNop(), testUsecase)
}

func validBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(requests.CreateCarePlanRequest{
		ProviderName:     "Dr. Smith",
		ProviderNPI:      "1234567890",
		PatientFirstName: "John",
		PatientLastName:  "Smith",
		PatientMRN:       "123456",
		PatientDOB:       "1985-03-15",
		MedicationName:   "Ozempic",
		PrimaryDiagnosis: "Type 2 Diabetes",
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestCarePlanController_SubmitOutcomeStatusMapping(t *testing.T) {
	ctrl := testController()

	cases := []struct {
		name       string
		outcome    string
		wantStatus int
	}{
		{"admitted maps to 201", contracts.OutcomeAdmitted, http.StatusCreated},
		{"needs confirmation maps to 200", contracts.OutcomeNeedsConfirmation, http.StatusOK},
		{"blocked maps to 409", contracts.OutcomeBlocked, http.StatusConflict},
		{"rate limited maps to 429", contracts.OutcomeRateLimited, http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			testUsecase.submitResponse = &responses.SubmitCarePlanResponse{Outcome: tc.outcome}

			req := httptest.NewRequest(http.MethodPost, "/careplans", validBody(t))
			rec := httptest.NewRecorder()
			ctrl.Submit(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestCarePlanController_SubmitRateLimitedSetsRetryAfter(t *testing.T) {
	ctrl := testController()
	testUsecase.submitResponse = &responses.SubmitCarePlanResponse{Outcome: contracts.OutcomeRateLimited}

	req := httptest.NewRequest(http.MethodPost, "/careplans", validBody(t))
	rec := httptest.NewRecorder()
	ctrl.Submit(rec, req)

	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var envelope responses.ResponseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	// The rejection message is fixed and reveals neither thresholds nor
	// current counts.
	assert.NotContains(t, envelope.Message, "10")
	assert.NotContains(t, envelope.Message, "200")
}

func TestCarePlanController_SubmitBlockedCarriesFindings(t *testing.T) {
	ctrl := testController()
	testUsecase.submitResponse = &responses.SubmitCarePlanResponse{
		Outcome: contracts.OutcomeBlocked,
		Findings: []responses.FindingDTO{
			{Level: "error", Code: "DUPLICATE_NPI_MISMATCH", Message: "npi mismatch"},
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/careplans", validBody(t))
	rec := httptest.NewRecorder()
	ctrl.Submit(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_NPI_MISMATCH")
}

func TestCarePlanController_SubmitRejectsInvalidPayload(t *testing.T) {
	ctrl := testController()

	body, err := json.Marshal(requests.CreateCarePlanRequest{
		ProviderName: "Dr. Smith",
		ProviderNPI:  "not-an-npi",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/careplans", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	ctrl.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
