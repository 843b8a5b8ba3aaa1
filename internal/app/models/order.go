package models

// Order is one medication request tied to a Patient and a Provider. A Patient
// accumulates many Orders over time.
type Order struct {
	ID                  string `json:"id,omitempty" bson:"_id,omitempty"`
	PatientID           string `json:"patientId" bson:"patientId"`
	ProviderID          string `json:"providerId" bson:"providerId"`
	MedicationName      string `json:"medicationName" bson:"medicationName"`
	PrimaryDiagnosis    string `json:"primaryDiagnosis" bson:"primaryDiagnosis"`
	AdditionalDiagnosis string `json:"additionalDiagnosis,omitempty" bson:"additionalDiagnosis,omitempty"`
	MedicationHistory   string `json:"medicationHistory,omitempty" bson:"medicationHistory,omitempty"`
	ClinicalNotes       string `json:"clinicalNotes,omitempty" bson:"clinicalNotes,omitempty"`
	TimeModel           `bson:",inline"`
}
