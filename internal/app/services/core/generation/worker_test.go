package generation

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/models"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.CarePlanJob
}

func newFakeJobRepo(jobs ...*models.CarePlanJob) *fakeJobRepo {
	repo := &fakeJobRepo{jobs: make(map[string]*models.CarePlanJob)}
	for _, job := range jobs {
		repo.jobs[job.ID] = job
	}
	return repo
}

func (f *fakeJobRepo) CreateJob(ctx context.Context, job *models.CarePlanJob) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.Status = models.CarePlanJobStatusPending
	f.jobs[job.ID] = job
	return job.ID, nil
}

func (f *fakeJobRepo) FindJobByID(ctx context.Context, jobID string) (*models.CarePlanJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobRepo) ClaimPending(ctx context.Context, jobID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok || job.Status != models.CarePlanJobStatusPending {
		return false, nil
	}
	job.Status = models.CarePlanJobStatusProcessing
	return true, nil
}

func (f *fakeJobRepo) CompleteJob(ctx context.Context, jobID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok || !job.Status.CanTransitionTo(models.CarePlanJobStatusCompleted) {
		return nil
	}
	job.Status = models.CarePlanJobStatusCompleted
	job.GeneratedContent = content
	return nil
}

func (f *fakeJobRepo) FailJob(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok || !job.Status.CanTransitionTo(models.CarePlanJobStatusFailed) {
		return nil
	}
	job.Status = models.CarePlanJobStatusFailed
	return nil
}

func (f *fakeJobRepo) SetRetryCount(ctx context.Context, jobID string, retryCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[jobID]; ok {
		job.RetryCount = retryCount
	}
	return nil
}

func (f *fakeJobRepo) ListStuck(ctx context.Context, status models.CarePlanJobStatus, age time.Duration) ([]models.CarePlanJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CarePlanJob
	for _, job := range f.jobs {
		if job.Status == status {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) ListAllJobs(ctx context.Context) ([]models.CarePlanJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CarePlanJob
	for _, job := range f.jobs {
		out = append(out, *job)
	}
	return out, nil
}

func (f *fakeJobRepo) CountByStatus(ctx context.Context) (map[models.CarePlanJobStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.CarePlanJobStatus]int64)
	for _, job := range f.jobs {
		counts[job.Status]++
	}
	return counts, nil
}

type fakeQueue struct {
	mu       sync.Mutex
	acked    []uint64
	rejected []uint64
	enqueued []string
}

func (f *fakeQueue) Enqueue(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, jobID)
	return nil
}

func (f *fakeQueue) Consume(ctx context.Context) (<-chan contracts.JobDelivery, error) {
	return nil, nil
}

func (f *fakeQueue) Ack(deliveryTag uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, deliveryTag)
	return nil
}

func (f *fakeQueue) Reject(deliveryTag uint64, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, deliveryTag)
	return nil
}

func (f *fakeQueue) Length(ctx context.Context) (int, error) { return 0, nil }

type scriptedClient struct {
	mu      sync.Mutex
	calls   int
	results []error
	content string
}

func (c *scriptedClient) GeneratePlan(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.calls < len(c.results) {
		err = c.results[c.calls]
	}
	c.calls++
	if err != nil {
		return "", err
	}
	return c.content, nil
}

func testJob(id string) *models.CarePlanJob {
	return &models.CarePlanJob{
		ID:                id,
		Status:            models.CarePlanJobStatusPending,
		PatientFirstName:  "John",
		PatientLastName:   "Smith",
		PatientMRN:        "123456",
		PatientDOB:        time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC),
		ReferringProvider: "Dr. Smith",
		ReferringNPI:      "1234567890",
		MedicationName:    "Ozempic",
		PrimaryDiagnosis:  "Type 2 Diabetes",
	}
}

func newTestWorker(repo *fakeJobRepo, queue *fakeQueue, client contracts.GenerationClient) *Worker {
	worker := NewWorker(queue, repo, client, nil, config.AppWorker{
		PoolSize:               1,
		MaxRetries:             3,
		RetryBaseDelayInMillis: 1,
		RetryMaxDelayInMillis:  5,
	}, zap.NewNop())
	worker.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return worker
}

func TestWorker_CompletesJobOnSuccess(t *testing.T) {
	repo := newFakeJobRepo(testJob("job-1"))
	queue := &fakeQueue{}
	client := &scriptedClient{content: "generated plan"}
	worker := newTestWorker(repo, queue, client)

	worker.handleDelivery(context.Background(), contracts.JobDelivery{JobID: "job-1", DeliveryTag: 7})

	job, err := repo.FindJobByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.CarePlanJobStatusCompleted, job.Status)
	assert.Equal(t, "generated plan", job.GeneratedContent)
	assert.Equal(t, []uint64{7}, queue.acked)
}

func TestWorker_RetriesTransientThenSucceeds(t *testing.T) {
	repo := newFakeJobRepo(testJob("job-1"))
	queue := &fakeQueue{}
	client := &scriptedClient{
		content: "generated plan",
		results: []error{
			fmt.Errorf("%w: upstream status 503", contracts.ErrGenerationTransient),
			fmt.Errorf("%w: upstream status 429", contracts.ErrGenerationTransient),
			nil,
		},
	}
	worker := newTestWorker(repo, queue, client)

	worker.handleDelivery(context.Background(), contracts.JobDelivery{JobID: "job-1", DeliveryTag: 1})

	job, _ := repo.FindJobByID(context.Background(), "job-1")
	assert.Equal(t, models.CarePlanJobStatusCompleted, job.Status)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 2, job.RetryCount)
}

func TestWorker_FailsAfterRetryCeiling(t *testing.T) {
	repo := newFakeJobRepo(testJob("job-1"))
	queue := &fakeQueue{}
	transient := fmt.Errorf("%w: connection refused", contracts.ErrGenerationTransient)
	client := &scriptedClient{results: []error{transient, transient, transient, transient}}
	worker := newTestWorker(repo, queue, client)

	worker.handleDelivery(context.Background(), contracts.JobDelivery{JobID: "job-1", DeliveryTag: 1})

	job, _ := repo.FindJobByID(context.Background(), "job-1")
	assert.Equal(t, models.CarePlanJobStatusFailed, job.Status)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, 3, job.RetryCount)
}

func TestWorker_RejectedFailureNeverRetries(t *testing.T) {
	repo := newFakeJobRepo(testJob("job-1"))
	queue := &fakeQueue{}
	client := &scriptedClient{results: []error{
		fmt.Errorf("%w: upstream status 400", contracts.ErrGenerationRejected),
	}}
	worker := newTestWorker(repo, queue, client)

	worker.handleDelivery(context.Background(), contracts.JobDelivery{JobID: "job-1", DeliveryTag: 1})

	job, _ := repo.FindJobByID(context.Background(), "job-1")
	assert.Equal(t, models.CarePlanJobStatusFailed, job.Status)
	assert.Equal(t, 1, client.calls)
}

func TestWorker_MissingJobIsDropped(t *testing.T) {
	repo := newFakeJobRepo()
	queue := &fakeQueue{}
	client := &scriptedClient{content: "generated plan"}
	worker := newTestWorker(repo, queue, client)

	worker.handleDelivery(context.Background(), contracts.JobDelivery{JobID: "gone", DeliveryTag: 3})

	assert.Equal(t, 0, client.calls)
	assert.Equal(t, []uint64{3}, queue.acked)
}

func TestWorker_TerminalRedeliveryIsNoOp(t *testing.T) {
	completed := testJob("job-1")
	completed.Status = models.CarePlanJobStatusCompleted
	completed.GeneratedContent = "original content"
	repo := newFakeJobRepo(completed)
	queue := &fakeQueue{}
	client := &scriptedClient{content: "new content"}
	worker := newTestWorker(repo, queue, client)

	worker.handleDelivery(context.Background(), contracts.JobDelivery{JobID: "job-1", DeliveryTag: 9})

	job, _ := repo.FindJobByID(context.Background(), "job-1")
	assert.Equal(t, models.CarePlanJobStatusCompleted, job.Status)
	assert.Equal(t, "original content", job.GeneratedContent)
	assert.Equal(t, 0, client.calls)
	assert.Equal(t, []uint64{9}, queue.acked)
}

func TestWorker_BackoffDoublesAndCaps(t *testing.T) {
	worker := &Worker{baseDelay: 100 * time.Millisecond, maxDelay: 300 * time.Millisecond}

	first := worker.backoff(0)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 130*time.Millisecond)

	second := worker.backoff(1)
	assert.GreaterOrEqual(t, second, 200*time.Millisecond)

	capped := worker.backoff(10)
	assert.GreaterOrEqual(t, capped, 300*time.Millisecond)
	assert.Less(t, capped, 380*time.Millisecond)
}

func TestBuildPrompt_IsDeterministic(t *testing.T) {
	job := testJob("job-1")
	assert.Equal(t, BuildPrompt(job), BuildPrompt(job))
	assert.Contains(t, BuildPrompt(job), "DRUG THERAPY PROBLEMS")
	assert.Contains(t, BuildPrompt(job), "MONITORING PLAN")
	assert.Contains(t, BuildPrompt(job), "Ozempic")
}
