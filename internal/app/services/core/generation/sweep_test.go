package generation

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/app/models"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLocker struct {
	acquire  bool
	unlocked int
}

func (f *stubLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	return f.acquire, "token", nil
}

func (f *stubLocker) Unlock(ctx context.Context, key, lockValue string) error {
	f.unlocked++
	return nil
}

func TestSweep_RequeuesStalePendingJobs(t *testing.T) {
	pending := testJob("job-1")
	processing := testJob("job-2")
	processing.Status = models.CarePlanJobStatusProcessing
	done := testJob("job-3")
	done.Status = models.CarePlanJobStatusCompleted

	repo := newFakeJobRepo(pending, processing, done)
	queue := &fakeQueue{}
	sweep := NewSweep(repo, queue, &stubLocker{acquire: true}, config.AppWorker{SweepIntervalInSeconds: 300}, zap.NewNop())

	sweep.runOnce(context.Background())

	assert.Equal(t, []string{"job-1"}, queue.enqueued)
}

func TestSweep_SkipsWithoutLeaderLock(t *testing.T) {
	repo := newFakeJobRepo(testJob("job-1"))
	queue := &fakeQueue{}
	sweep := NewSweep(repo, queue, &stubLocker{acquire: false}, config.AppWorker{SweepIntervalInSeconds: 300}, zap.NewNop())

	sweep.runOnce(context.Background())

	assert.Empty(t, queue.enqueued)
}
