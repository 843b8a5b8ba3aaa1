package providers

import (
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/models"
	"careplan-service/internal/pkg/constvars"
	"careplan-service/internal/pkg/exceptions"
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProviderMongoRepository struct {
	Collection *mongo.Collection
}

func NewProviderMongoRepository(db *mongo.Client, dbName string) contracts.ProviderRepository {
	return &ProviderMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionProviders),
	}
}

func (r *ProviderMongoRepository) FindByNPI(ctx context.Context, npi string) (*models.Provider, error) {
	var provider models.Provider
	err := r.Collection.FindOne(ctx, bson.M{"npi": npi}).Decode(&provider)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &provider, nil
}

func (r *ProviderMongoRepository) CreateProvider(ctx context.Context, provider *models.Provider) (string, error) {
	if provider.ID == "" {
		provider.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	provider.CreatedAt = now
	provider.UpdatedAt = now

	_, err := r.Collection.InsertOne(ctx, provider)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", exceptions.ErrMongoDBDuplicateKey(err)
		}
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return provider.ID, nil
}
