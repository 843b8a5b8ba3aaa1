package storage

import (
	"bytes"
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/pkg/constvars"
	"careplan-service/internal/pkg/exceptions"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MinioStorage archives completed plan text as plain-text objects. The
// database row stays the source of truth; this is an operator-facing copy.
type MinioStorage struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

func NewMinioStorage(client *minio.Client, bucket string, log *zap.Logger) *MinioStorage {
	return &MinioStorage{
		client: client,
		bucket: bucket,
		log:    log,
	}
}

var _ contracts.ArtifactStorage = (*MinioStorage)(nil)

func (s *MinioStorage) UploadPlanText(ctx context.Context, jobID string, content []byte) (string, error) {
	objectName := fmt.Sprintf("care-plans/%s/%s.txt", time.Now().UTC().Format("2006-01-02"), jobID)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: constvars.MIMETextPlain,
	})
	if err != nil {
		return "", exceptions.ErrMinioCreateObject(err, s.bucket)
	}

	s.log.Info("storage.UploadPlanText archived",
		zap.String(constvars.LoggingJobIDKey, jobID),
		zap.String(constvars.LoggingObjectNameKey, objectName))
	return objectName, nil
}
