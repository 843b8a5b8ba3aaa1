package models

import "time"

// CarePlanJobStatus enumerates the generation lifecycle. Transitions are
// validated through CanTransitionTo; terminal states never change again.
type CarePlanJobStatus string

const (
	CarePlanJobStatusPending    CarePlanJobStatus = "pending"
	CarePlanJobStatusProcessing CarePlanJobStatus = "processing"
	CarePlanJobStatusCompleted  CarePlanJobStatus = "completed"
	CarePlanJobStatusFailed     CarePlanJobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s CarePlanJobStatus) Terminal() bool {
	return s == CarePlanJobStatusCompleted || s == CarePlanJobStatusFailed
}

// CanTransitionTo enforces the monotonic state machine:
// pending → processing → {completed, failed}.
func (s CarePlanJobStatus) CanTransitionTo(next CarePlanJobStatus) bool {
	switch s {
	case CarePlanJobStatusPending:
		return next == CarePlanJobStatusProcessing
	case CarePlanJobStatusProcessing:
		return next == CarePlanJobStatusCompleted || next == CarePlanJobStatusFailed
	default:
		return false
	}
}

// CarePlanJob is one unit of asynchronous generation work, one-to-one with an
// admitted request. The patient, provider and order fields are captured at
// admission so the worker builds its prompt without further lookups.
type CarePlanJob struct {
	ID      string            `json:"id,omitempty" bson:"_id,omitempty"`
	OrderID string            `json:"orderId" bson:"orderId"`
	Status  CarePlanJobStatus `json:"status" bson:"status"`

	PatientFirstName    string    `json:"patientFirstName" bson:"patientFirstName"`
	PatientLastName     string    `json:"patientLastName" bson:"patientLastName"`
	PatientDOB          time.Time `json:"patientDob" bson:"patientDob"`
	PatientMRN          string    `json:"patientMrn" bson:"patientMrn"`
	ReferringProvider   string    `json:"referringProvider" bson:"referringProvider"`
	ReferringNPI        string    `json:"referringNpi" bson:"referringNpi"`
	MedicationName      string    `json:"medicationName" bson:"medicationName"`
	PrimaryDiagnosis    string    `json:"primaryDiagnosis" bson:"primaryDiagnosis"`
	AdditionalDiagnosis string    `json:"additionalDiagnosis,omitempty" bson:"additionalDiagnosis,omitempty"`
	MedicationHistory   string    `json:"medicationHistory,omitempty" bson:"medicationHistory,omitempty"`
	ClinicalNotes       string    `json:"clinicalNotes,omitempty" bson:"clinicalNotes,omitempty"`

	GeneratedContent string `json:"generatedContent,omitempty" bson:"generatedContent,omitempty"`
	RetryCount       int    `json:"retryCount" bson:"retryCount"`
	TimeModel        `bson:",inline"`
}
