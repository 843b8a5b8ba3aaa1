package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCarePlanJobStatusTransitions(t *testing.T) {
	t.Run("Pending Can Only Move To Processing", func(t *testing.T) {
		assert.True(t, CarePlanJobStatusPending.CanTransitionTo(CarePlanJobStatusProcessing))
		assert.False(t, CarePlanJobStatusPending.CanTransitionTo(CarePlanJobStatusCompleted))
		assert.False(t, CarePlanJobStatusPending.CanTransitionTo(CarePlanJobStatusFailed))
		assert.False(t, CarePlanJobStatusPending.CanTransitionTo(CarePlanJobStatusPending))
	})

	t.Run("Processing Can Only Move To Terminal", func(t *testing.T) {
		assert.True(t, CarePlanJobStatusProcessing.CanTransitionTo(CarePlanJobStatusCompleted))
		assert.True(t, CarePlanJobStatusProcessing.CanTransitionTo(CarePlanJobStatusFailed))
		assert.False(t, CarePlanJobStatusProcessing.CanTransitionTo(CarePlanJobStatusPending))
	})

	t.Run("Terminal States Are Frozen", func(t *testing.T) {
		for _, terminal := range []CarePlanJobStatus{CarePlanJobStatusCompleted, CarePlanJobStatusFailed} {
			for _, next := range []CarePlanJobStatus{
				CarePlanJobStatusPending,
				CarePlanJobStatusProcessing,
				CarePlanJobStatusCompleted,
				CarePlanJobStatusFailed,
			} {
				assert.False(t, terminal.CanTransitionTo(next), "%s must not transition to %s", terminal, next)
			}
		}
	})

	t.Run("Terminal Predicate", func(t *testing.T) {
		assert.False(t, CarePlanJobStatusPending.Terminal())
		assert.False(t, CarePlanJobStatusProcessing.Terminal())
		assert.True(t, CarePlanJobStatusCompleted.Terminal())
		assert.True(t, CarePlanJobStatusFailed.Terminal())
	})
}
