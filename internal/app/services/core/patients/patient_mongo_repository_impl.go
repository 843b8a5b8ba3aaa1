package patients

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
)

type PatientMongoRepository struct {
	Collection *mongo.Collection
}

func NewPatientMongoRepository(db *mongo.Client, dbName string) contracts.PatientRepository {
	return &PatientMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionPatients),
	}
}

func (r *PatientMongoRepository) FindByMRN(ctx context.Context, mrn string) (*models.Patient, error) {
	var patient models.Patient
	err := r.Collection.FindOne(ctx, bson.M{"mrn": mrn}).Decode(&patient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &patient, nil
}

// FindByNameAndBirthDate matches names case-insensitively via anchored regex
// filters and the birth date by calendar day.
func (r *PatientMongoRepository) FindByNameAndBirthDate(ctx context.Context, firstName, lastName string, dob time.Time) (*models.Patient, error) {
	dayStart := time.Date(dob.UTC().Year(), dob.UTC().Month(), dob.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	filter := bson.M{
		"firstName": primitive.Regex{Pattern: fmt.Sprintf("^%s$", regexp.QuoteMeta(firstName)), Options: "i"},
		"lastName":  primitive.Regex{Pattern: fmt.Sprintf("^%s$", regexp.QuoteMeta(lastName)), Options: "i"},
		"dateOfBirth": bson.M{
			"$gte": dayStart,
			"$lt":  dayEnd,
		},
	}

	var patient models.Patient
	err := r.Collection.FindOne(ctx, filter).Decode(&patient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &patient, nil
}

func (r *PatientMongoRepository) CreatePatient(ctx context.Context, patient *models.Patient) (string, error) {
	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	_, err := r.Collection.InsertOne(ctx, patient)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", exceptions.ErrMongoDBDuplicateKey(err)
		}
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return patient.ID, nil
}
