package orders

import (
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/app/models"
	"careplan-service/internal/pkg/constvars"
	"careplan-service/internal/pkg/exceptions"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderMongoRepository struct {
	Collection *mongo.Collection
}

func NewOrderMongoRepository(db *mongo.Client, dbName string) contracts.OrderRepository {
	return &OrderMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionOrders),
	}
}

func (r *OrderMongoRepository) FindByPatientAndMedication(ctx context.Context, patientID, medicationName string) ([]models.Order, error) {
	filter := bson.M{
		"patientId":      patientID,
		"medicationName": primitive.Regex{Pattern: fmt.Sprintf("^%s$", regexp.QuoteMeta(medicationName)), Options: "i"},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return orders, nil
}

func (r *OrderMongoRepository) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err := r.Collection.InsertOne(ctx, order)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return order.ID, nil
}
