package contracts

import (
	"careplan-service/internal/app/models"
	"context"
)

type ProviderRepository interface {
	// FindByNPI returns (nil, nil) when no provider carries the identifier.
	FindByNPI(ctx context.Context, npi string) (*models.Provider, error)
	// CreateProvider surfaces a uniqueness violation as a conflict error the
	// caller detects with exceptions.IsConflict.
	CreateProvider(ctx context.Context, provider *models.Provider) (providerID string, err error)
}
