package careplans

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/models"
	"careplan-service/internal/app/services/core/validation"
	"careplan-service/internal/app/services/shared/ratelimiter"
	"careplan-service/internal/pkg/dto/requests"
	"careplan-service/internal/pkg/exceptions"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRedis struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMemRedis() *memRedis {
	return &memRedis{counters: make(map[string]int64)}
}

func (m *memRedis) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (m *memRedis) Delete(ctx context.Context, key string) error { return nil }
func (m *memRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return nil
}

func (m *memRedis) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *memRedis) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	return true, nil
}

type memProviderRepo struct {
	providers     []models.Provider
	conflictOnce  bool
	conflictFired bool
}

func (f *memProviderRepo) FindByNPI(ctx context.Context, npi string) (*models.Provider, error) {
	for i := range f.providers {
		if f.providers[i].NPI == npi {
			return &f.providers[i], nil
		}
	}
	return nil, nil
}

func (f *memProviderRepo) CreateProvider(ctx context.Context, provider *models.Provider) (string, error) {
	if f.conflictOnce && !f.conflictFired {
		// Simulate losing the unique index race: the row appears under the
		// same identity just before our insert lands.
		f.conflictFired = true
		f.providers = append(f.providers, models.Provider{ID: "prov-raced", Name: provider.Name, NPI: provider.NPI})
		return "", exceptions.ErrMongoDBDuplicateKey(errors.New("E11000 duplicate key"))
	}
	provider.ID = "prov-new"
	f.providers = append(f.providers, *provider)
	return provider.ID, nil
}

type memPatientRepo struct {
	patients []models.Patient
}

func (f *memPatientRepo) FindByMRN(ctx context.Context, mrn string) (*models.Patient, error) {
	for i := range f.patients {
		if f.patients[i].MRN == mrn {
			return &f.patients[i], nil
		}
	}
	return nil, nil
}

func (f *memPatientRepo) FindByNameAndBirthDate(ctx context.Context, firstName, lastName string, dob time.Time) (*models.Patient, error) {
	for i := range f.patients {
		p := &f.patients[i]
		if strings.EqualFold(p.FirstName, firstName) && strings.EqualFold(p.LastName, lastName) && p.SameBirthDate(dob) {
			return p, nil
		}
	}
	return nil, nil
}

func (f *memPatientRepo) CreatePatient(ctx context.Context, patient *models.Patient) (string, error) {
	patient.ID = "pat-new"
	f.patients = append(f.patients, *patient)
	return patient.ID, nil
}

type memOrderRepo struct {
	orders []models.Order
}

func (f *memOrderRepo) FindByPatientAndMedication(ctx context.Context, patientID, medicationName string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.PatientID == patientID && strings.EqualFold(o.MedicationName, medicationName) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *memOrderRepo) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	order.ID = "ord-new"
	f.orders = append(f.orders, *order)
	return order.ID, nil
}

type memJobRepo struct {
	jobs map[string]*models.CarePlanJob
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*models.CarePlanJob)}
}

func (f *memJobRepo) CreateJob(ctx context.Context, job *models.CarePlanJob) (string, error) {
	job.ID = "job-new"
	job.Status = models.CarePlanJobStatusPending
	f.jobs[job.ID] = job
	return job.ID, nil
}

func (f *memJobRepo) FindJobByID(ctx context.Context, jobID string) (*models.CarePlanJob, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, nil
	}
	return job, nil
}

func (f *memJobRepo) ClaimPending(ctx context.Context, jobID string) (bool, error) { return false, nil }
func (f *memJobRepo) CompleteJob(ctx context.Context, jobID, content string) error { return nil }
func (f *memJobRepo) FailJob(ctx context.Context, jobID string) error              { return nil }
func (f *memJobRepo) SetRetryCount(ctx context.Context, jobID string, retryCount int) error {
	return nil
}

func (f *memJobRepo) ListStuck(ctx context.Context, status models.CarePlanJobStatus, age time.Duration) ([]models.CarePlanJob, error) {
	return nil, nil
}

func (f *memJobRepo) ListAllJobs(ctx context.Context) ([]models.CarePlanJob, error) {
	var out []models.CarePlanJob
	for _, job := range f.jobs {
		out = append(out, *job)
	}
	return out, nil
}

func (f *memJobRepo) CountByStatus(ctx context.Context) (map[models.CarePlanJobStatus]int64, error) {
	counts := make(map[models.CarePlanJobStatus]int64)
	for _, job := range f.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

type memQueue struct {
	enqueued []string
	failWith error
}

func (f *memQueue) Enqueue(ctx context.Context, jobID string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.enqueued = append(f.enqueued, jobID)
	return nil
}

func (f *memQueue) Consume(ctx context.Context) (<-chan contracts.JobDelivery, error) {
	return nil, nil
}
func (f *memQueue) Ack(deliveryTag uint64) error                  { return nil }
func (f *memQueue) Reject(deliveryTag uint64, requeue bool) error { return nil }
func (f *memQueue) Length(ctx context.Context) (int, error)       { return len(f.enqueued), nil }

type usecaseFixture struct {
	usecase   contracts.CarePlanUsecase
	providers *memProviderRepo
	patients  *memPatientRepo
	orders    *memOrderRepo
	jobs      *memJobRepo
	queue     *memQueue
}

func newFixture(minuteMax int, providers *memProviderRepo) *usecaseFixture {
	if providers == nil {
		providers = &memProviderRepo{}
	}
	patients := &memPatientRepo{}
	orders := &memOrderRepo{}
	jobs := newMemJobRepo()
	queue := &memQueue{}
	log := zap.NewNop()

	engine := validation.NewEngine(providers, patients, orders, log)
	limiter := ratelimiter.NewSubmissionLimiter(newMemRedis(), log, minuteMax, 1000)

	usecase := NewCarePlanUsecase(engine, limiter, providers, patients, orders, jobs, queue,
		config.AppCarePlan{ValidationRetryAttempts: 3}, log)

	return &usecaseFixture{usecase: usecase, providers: providers, patients: patients, orders: orders, jobs: jobs, queue: queue}
}

func submitRequest() *requests.CreateCarePlanRequest {
	return &requests.CreateCarePlanRequest{
		ProviderName:     "Dr. Smith",
		ProviderNPI:      "1234567890",
		PatientFirstName: "John",
		PatientLastName:  "Smith",
		PatientMRN:       "123456",
		PatientDOB:       "1985-03-15",
		MedicationName:   "Ozempic",
		PrimaryDiagnosis: "Type 2 Diabetes",
	}
}

func TestSubmitCarePlan_AdmitsAndEnqueues(t *testing.T) {
	fixture := newFixture(10, nil)

	resp, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)

	assert.Equal(t, contracts.OutcomeAdmitted, resp.Outcome)
	assert.Equal(t, "job-new", resp.JobID)
	assert.Empty(t, resp.Findings)
	assert.Equal(t, []string{"job-new"}, fixture.queue.enqueued)
	assert.Len(t, fixture.providers.providers, 1)
	assert.Len(t, fixture.patients.patients, 1)
	assert.Len(t, fixture.orders.orders, 1)

	job := fixture.jobs.jobs["job-new"]
	require.NotNil(t, job)
	assert.Equal(t, models.CarePlanJobStatusPending, job.Status)
	assert.Equal(t, "Ozempic", job.MedicationName)
}

func TestSubmitCarePlan_RateLimited(t *testing.T) {
	fixture := newFixture(1, nil)

	first, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)
	require.Equal(t, contracts.OutcomeAdmitted, first.Outcome)

	second, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, contracts.OutcomeRateLimited, second.Outcome)
	assert.Empty(t, second.Findings)
}

func TestSubmitCarePlan_BlockedPersistsNothing(t *testing.T) {
	providers := &memProviderRepo{providers: []models.Provider{{ID: "prov-1", Name: "Dr. Jones", NPI: "1234567890"}}}
	fixture := newFixture(10, providers)

	resp, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)

	assert.Equal(t, contracts.OutcomeBlocked, resp.Outcome)
	require.Len(t, resp.Findings, 1)
	assert.Equal(t, validation.CodeDuplicateNPIMismatch, resp.Findings[0].Code)
	assert.Empty(t, resp.JobID)
	assert.Empty(t, fixture.queue.enqueued)
	assert.Empty(t, fixture.patients.patients)
	assert.Empty(t, fixture.orders.orders)
	assert.Empty(t, fixture.jobs.jobs)
}

func TestSubmitCarePlan_NeedsConfirmationThenAdmits(t *testing.T) {
	dob := time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC)
	patients := []models.Patient{{ID: "pat-1", FirstName: "Jane", LastName: "Smith", MRN: "123456", DateOfBirth: dob}}
	fixture := newFixture(10, nil)
	fixture.patients.patients = patients

	resp, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)
	assert.Equal(t, contracts.OutcomeNeedsConfirmation, resp.Outcome)
	require.Len(t, resp.Findings, 1)
	assert.Equal(t, validation.CodePatientInfoMismatch, resp.Findings[0].Code)
	assert.Empty(t, fixture.jobs.jobs)

	confirmed := submitRequest()
	confirmed.Confirm = true
	resp, err = fixture.usecase.SubmitCarePlan(context.Background(), confirmed)
	require.NoError(t, err)
	assert.Equal(t, contracts.OutcomeAdmitted, resp.Outcome)

	// The existing patient record was reused, not duplicated.
	assert.Len(t, fixture.patients.patients, 1)
	require.Len(t, fixture.orders.orders, 1)
	assert.Equal(t, "pat-1", fixture.orders.orders[0].PatientID)
}

func TestSubmitCarePlan_ConflictTriggersRevalidation(t *testing.T) {
	providers := &memProviderRepo{conflictOnce: true}
	fixture := newFixture(10, providers)

	resp, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)

	// The second evaluation sees the raced row under the same name and
	// reuses it instead of inserting again.
	assert.Equal(t, contracts.OutcomeAdmitted, resp.Outcome)
	require.Len(t, fixture.orders.orders, 1)
	assert.Equal(t, "prov-raced", fixture.orders.orders[0].ProviderID)
	assert.Len(t, fixture.providers.providers, 1)
}

func TestSubmitCarePlan_EnqueueFailureLeavesPendingJob(t *testing.T) {
	fixture := newFixture(10, nil)
	fixture.queue.failWith = errors.New("broker unavailable")

	_, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.Error(t, err)

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, 503, customErr.StatusCode)

	job := fixture.jobs.jobs["job-new"]
	require.NotNil(t, job)
	assert.Equal(t, models.CarePlanJobStatusPending, job.Status)
}

func TestGetCarePlanStatus(t *testing.T) {
	fixture := newFixture(10, nil)

	_, err := fixture.usecase.GetCarePlanStatus(context.Background(), "missing")
	require.Error(t, err)
	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, 404, customErr.StatusCode)

	resp, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)

	status, err := fixture.usecase.GetCarePlanStatus(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(models.CarePlanJobStatusPending), status.Status)
	assert.Empty(t, status.Content)
}

func TestDownloadCarePlan(t *testing.T) {
	fixture := newFixture(10, nil)
	resp, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)

	_, _, err = fixture.usecase.DownloadCarePlan(context.Background(), resp.JobID)
	require.Error(t, err)
	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, 409, customErr.StatusCode)

	job := fixture.jobs.jobs[resp.JobID]
	job.Status = models.CarePlanJobStatusCompleted
	job.GeneratedContent = "plan text"

	filename, content, err := fixture.usecase.DownloadCarePlan(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Contains(t, filename, resp.JobID)
	assert.Equal(t, "plan text", string(content))
}

func TestExportCarePlansCSV(t *testing.T) {
	fixture := newFixture(10, nil)
	_, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)

	out, err := fixture.usecase.ExportCarePlansCSV(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "job_id")
	assert.Contains(t, lines[1], "Ozempic")
	// Generated content never lands in the export.
	assert.NotContains(t, lines[0], "content")
}

func TestGetCarePlanStats(t *testing.T) {
	fixture := newFixture(10, nil)
	_, err := fixture.usecase.SubmitCarePlan(context.Background(), submitRequest())
	require.NoError(t, err)

	stats, err := fixture.usecase.GetCarePlanStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(0), stats.Completed)
	assert.Equal(t, 1, stats.QueueLength)
}
