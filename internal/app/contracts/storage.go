package contracts

import "context"

// ArtifactStorage archives completed plan text to object storage. Uploads are
// best-effort; the database stays the source of truth.
type ArtifactStorage interface {
	UploadPlanText(ctx context.Context, jobID string, content []byte) (objectName string, err error)
}
