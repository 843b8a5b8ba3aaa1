package database

import (
	"careplan-service/internal/app/config"
	"careplan-service/internal/pkg/constvars"
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func NewMongoDB(driverConfig *config.DriverConfig) *mongo.Client {
	connectionString := fmt.Sprintf(
		"mongodb://%s:%s@%s:%s",
		driverConfig.MongoDB.Username,
		driverConfig.MongoDB.Password,
		driverConfig.MongoDB.Host,
		driverConfig.MongoDB.Port,
	)
	dbOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(context.TODO(), dbOptions)
	if err != nil {
		log.Fatalf("Failed to connect to mongo database: %s", err.Error())
	}
	err = client.Ping(context.TODO(), nil)
	if err != nil {
		log.Fatalf("Failed to ping or test the connection to mongo database: %s", err.Error())
	}
	log.Println("Successfully connected to mongo database")
	return client
}

// EnsureIndexes creates the unique indexes the duplicate checks rely on.
// The store-level constraint is the authoritative backstop for concurrent
// admissions; the rule engine's pre-checks are advisory only.
func EnsureIndexes(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	_, err := db.Collection(constvars.MongoCollectionProviders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "npi", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(constvars.MongoCollectionPatients).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "mrn", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(constvars.MongoCollectionOrders).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "patientId", Value: 1}, {Key: "medicationName", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(constvars.MongoCollectionCarePlanJobs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "updatedAt", Value: 1}},
	})
	return err
}
