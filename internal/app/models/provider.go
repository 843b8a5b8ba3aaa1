package models

// Provider is a referring clinician. NPI is a 10-character national
// identifier and globally unique; the collection carries a unique index on it.
type Provider struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string `json:"name" bson:"name"`
	NPI       string `json:"npi" bson:"npi"`
	TimeModel `bson:",inline"`
}
