package validation

import "careplan-service/internal/app/models"

// Level classifies a finding. Errors block admission outright; warnings are
// bypassable with an explicit confirmation.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Finding codes. Codes are stable API surface; messages are advisory text and
// must never embed another record's name, identifier or internal key.
const (
	CodeDuplicateNPIMismatch    = "DUPLICATE_NPI_MISMATCH"
	CodePatientInfoMismatch     = "PATIENT_INFO_MISMATCH"
	CodeDuplicatePatientSuspect = "DUPLICATE_PATIENT_SUSPECTED"
	CodeDuplicateOrderSameDay   = "DUPLICATE_ORDER_SAME_DAY"
	CodeExistingMedicationOrder = "EXISTING_MEDICATION_ORDER"
)

// ValidationItem is one classified finding.
type ValidationItem struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult accumulates findings in evaluation order plus any existing
// records the checks resolved for reuse. One result per request; it is
// discarded after the gate decision.
type ValidationResult struct {
	items            []ValidationItem
	ReusableProvider *models.Provider
	ReusablePatient  *models.Patient
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{}
}

func (r *ValidationResult) AddError(code, message string) {
	r.items = append(r.items, ValidationItem{Level: LevelError, Code: code, Message: message})
}

func (r *ValidationResult) AddWarning(code, message string) {
	r.items = append(r.items, ValidationItem{Level: LevelWarning, Code: code, Message: message})
}

// Items returns all findings in the order they were recorded.
func (r *ValidationResult) Items() []ValidationItem {
	return r.items
}

func (r *ValidationResult) HasErrors() bool {
	for _, item := range r.items {
		if item.Level == LevelError {
			return true
		}
	}
	return false
}

func (r *ValidationResult) HasWarnings() bool {
	for _, item := range r.items {
		if item.Level == LevelWarning {
			return true
		}
	}
	return false
}
