package validation

import (
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/pkg/constvars"
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EvaluateInput carries the proposed Provider/Patient/Order triple.
type EvaluateInput struct {
	ProviderName     string
	ProviderNPI      string
	PatientFirstName string
	PatientLastName  string
	PatientMRN       string
	PatientDOB       time.Time
	MedicationName   string
	Confirm          bool
}

// Engine runs the duplicate and conflict checks against existing records.
// It is read-only against the store; persistence races are caught downstream
// by the unique indexes and resolved by re-running Evaluate.
type Engine struct {
	providerRepo contracts.ProviderRepository
	patientRepo  contracts.PatientRepository
	orderRepo    contracts.OrderRepository
	log          *zap.Logger
	now          func() time.Time
}

func NewEngine(
	providerRepo contracts.ProviderRepository,
	patientRepo contracts.PatientRepository,
	orderRepo contracts.OrderRepository,
	log *zap.Logger,
) *Engine {
	return &Engine{
		providerRepo: providerRepo,
		patientRepo:  patientRepo,
		orderRepo:    orderRepo,
		log:          log,
		now:          time.Now,
	}
}

// SetNowFunc overrides the clock used for same-day order detection.
func (e *Engine) SetNowFunc(now func() time.Time) {
	e.now = now
}

// Evaluate runs the provider, patient and order checks in that fixed order.
// The order check depends on the patient check resolving a reusable record.
// All findings are collected; nothing short-circuits.
func (e *Engine) Evaluate(ctx context.Context, input EvaluateInput) (*ValidationResult, error) {
	result := NewValidationResult()

	if err := e.checkProvider(ctx, input, result); err != nil {
		return nil, err
	}
	if err := e.checkPatient(ctx, input, result); err != nil {
		return nil, err
	}
	if result.ReusablePatient != nil {
		if err := e.checkOrders(ctx, input, result); err != nil {
			return nil, err
		}
	}

	e.log.Info("validation.Evaluate finished",
		zap.Int(constvars.LoggingFindingCountKey, len(result.Items())),
		zap.Bool(constvars.LoggingConfirmKey, input.Confirm))

	return result, nil
}

// checkProvider looks up by NPI. An NPI collision under a different name is a
// hard stop and the message never echoes the stored name: a mismatch on a
// national identifier is either a typo or a trust violation.
func (e *Engine) checkProvider(ctx context.Context, input EvaluateInput, result *ValidationResult) error {
	existing, err := e.providerRepo.FindByNPI(ctx, input.ProviderNPI)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	if strings.EqualFold(existing.Name, input.ProviderName) {
		result.ReusableProvider = existing
		return nil
	}
	result.AddError(
		CodeDuplicateNPIMismatch,
		"a provider with this NPI is already registered under a different name, please verify the NPI and provider name",
	)
	return nil
}

// checkPatient looks up by MRN first, then falls back to a name+birth-date
// probe. An MRN match with drifted demographics is still reusable because
// recorded data legitimately changes; a demographic match under a different
// MRN is not, since it may genuinely be a new record.
func (e *Engine) checkPatient(ctx context.Context, input EvaluateInput, result *ValidationResult) error {
	existing, err := e.patientRepo.FindByMRN(ctx, input.PatientMRN)
	if err != nil {
		return err
	}

	if existing != nil {
		nameMatches := strings.EqualFold(existing.FirstName, input.PatientFirstName) &&
			strings.EqualFold(existing.LastName, input.PatientLastName)
		if nameMatches && existing.SameBirthDate(input.PatientDOB) {
			result.ReusablePatient = existing
			return nil
		}
		result.AddWarning(
			CodePatientInfoMismatch,
			"a patient with this MRN exists with different name or date of birth, confirm to proceed with the existing record",
		)
		result.ReusablePatient = existing
		return nil
	}

	suspect, err := e.patientRepo.FindByNameAndBirthDate(ctx, input.PatientFirstName, input.PatientLastName, input.PatientDOB)
	if err != nil {
		return err
	}
	if suspect != nil {
		result.AddWarning(
			CodeDuplicatePatientSuspect,
			"a patient with the same name and date of birth exists under a different MRN, confirm to create a new patient record",
		)
	}
	return nil
}

// checkOrders inspects prior orders for the resolved patient and medication.
// A same-day repeat is an operator mistake and errors unconditionally; older
// history only warns and confirm acknowledges it.
func (e *Engine) checkOrders(ctx context.Context, input EvaluateInput, result *ValidationResult) error {
	orders, err := e.orderRepo.FindByPatientAndMedication(ctx, result.ReusablePatient.ID, input.MedicationName)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	today := e.now()
	for _, order := range orders {
		if sameCalendarDay(order.CreatedAt, today) {
			result.AddError(
				CodeDuplicateOrderSameDay,
				"an order for this medication was already submitted for this patient today",
			)
			return nil
		}
	}

	if !input.Confirm {
		result.AddWarning(
			CodeExistingMedicationOrder,
			"this patient has a prior order for this medication, confirm to proceed anyway",
		)
	}
	return nil
}

func sameCalendarDay(a, b time.Time) bool {
	y1, m1, d1 := a.UTC().Date()
	y2, m2, d2 := b.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
