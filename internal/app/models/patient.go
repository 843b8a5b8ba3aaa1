package models

import "time"

// Patient holds demographic identity. MRN is globally unique (unique index)
// but it is an internal identifier, not managed as strictly as NPI.
type Patient struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName   string    `json:"firstName" bson:"firstName"`
	LastName    string    `json:"lastName" bson:"lastName"`
	MRN         string    `json:"mrn" bson:"mrn"`
	DateOfBirth time.Time `json:"dateOfBirth" bson:"dateOfBirth"`
	TimeModel   `bson:",inline"`
}

// SameBirthDate compares calendar dates only, ignoring the time component.
func (p *Patient) SameBirthDate(dob time.Time) bool {
	y1, m1, d1 := p.DateOfBirth.UTC().Date()
	y2, m2, d2 := dob.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
