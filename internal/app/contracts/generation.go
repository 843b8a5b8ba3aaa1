package contracts

import (
	"context"
	"errors"
)

// Failure classes at the generation boundary. The worker retries only
// transient failures; a rejected request will never succeed on retry.
var (
	ErrGenerationTransient = errors.New("generation: transient failure")
	ErrGenerationRejected  = errors.New("generation: request rejected")
)

// GenerationClient produces care plan text from a prompt. Implementations
// wrap their failures in ErrGenerationTransient or ErrGenerationRejected.
type GenerationClient interface {
	GeneratePlan(ctx context.Context, prompt string) (string, error)
}
