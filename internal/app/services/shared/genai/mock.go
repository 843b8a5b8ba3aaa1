package genai

import (
	"careplan-service/internal/app/contracts"
	"context"
	"time"
)

// MockClient returns a fixed plan without calling the upstream endpoint.
// Used for local development and load testing where billed calls are
// unacceptable.
type MockClient struct {
	delay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{delay: 200 * time.Millisecond}
}

var _ contracts.GenerationClient = (*MockClient)(nil)

func (m *MockClient) GeneratePlan(ctx context.Context, prompt string) (string, error) {
	select {
	case <-time.After(m.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return mockPlanText, nil
}

const mockPlanText = `DRUG THERAPY PROBLEMS
1. Indication reviewed against current medication list; no unaddressed indication identified at intake.
2. Potential adherence risk noted; requires follow-up at first monitoring visit.

SMART GOALS
1. Patient will demonstrate correct administration technique within 2 weeks of initiation.
2. Achieve documented symptom improvement at the 12-week follow-up assessment.

INTERVENTIONS
1. Provide counseling on administration, storage, and missed-dose handling at dispensing.
2. Coordinate baseline laboratory work with the referring provider before the first refill.

MONITORING PLAN
1. Follow-up call at week 2 to assess tolerance and adherence.
2. Clinical review at week 12; escalate to the referring provider on any adverse event.`
