package requests

import "time"

// CreateCarePlanRequest is the submission payload. Confirm acknowledges
// previously returned warnings; it never bypasses errors.
type CreateCarePlanRequest struct {
	ProviderName        string `json:"providerName" validate:"required,max=100"`
	ProviderNPI         string `json:"providerNpi" validate:"required,npi"`
	PatientFirstName    string `json:"patientFirstName" validate:"required,max=50"`
	PatientLastName     string `json:"patientLastName" validate:"required,max=50"`
	PatientMRN          string `json:"patientMrn" validate:"required,mrn"`
	PatientDOB          string `json:"patientDob" validate:"required,datetime=2006-01-02"`
	MedicationName      string `json:"medicationName" validate:"required,max=100"`
	PrimaryDiagnosis    string `json:"primaryDiagnosis" validate:"required,max=200"`
	AdditionalDiagnosis string `json:"additionalDiagnosis" validate:"max=500"`
	MedicationHistory   string `json:"medicationHistory" validate:"max=2000"`
	ClinicalNotes       string `json:"clinicalNotes" validate:"max=2000"`
	Confirm             bool   `json:"confirm"`
}

// ParsedDOB converts the validated date string. Call only after validation
// has passed.
func (r *CreateCarePlanRequest) ParsedDOB() (time.Time, error) {
	return time.Parse("2006-01-02", r.PatientDOB)
}
