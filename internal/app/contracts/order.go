package contracts

import (
	"careplan-service/internal/app/models"
	"context"
)

type OrderRepository interface {
	// FindByPatientAndMedication matches the medication name
	// case-insensitively and returns orders newest first.
	FindByPatientAndMedication(ctx context.Context, patientID, medicationName string) ([]models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) (orderID string, err error)
}
