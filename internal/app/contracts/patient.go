package contracts

import (
	"careplan-service/internal/app/models"
	"context"
	"time"
)

type PatientRepository interface {
	// FindByMRN returns (nil, nil) when no patient carries the identifier.
	FindByMRN(ctx context.Context, mrn string) (*models.Patient, error)
	// FindByNameAndBirthDate matches first/last name case-insensitively and
	// the birth date by calendar day.
	FindByNameAndBirthDate(ctx context.Context, firstName, lastName string, dob time.Time) (*models.Patient, error)
	CreatePatient(ctx context.Context, patient *models.Patient) (patientID string, err error)
}
