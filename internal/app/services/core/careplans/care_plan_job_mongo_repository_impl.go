package careplans

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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CarePlanJobMongoRepository struct {
	Collection *mongo.Collection
}

func NewCarePlanJobMongoRepository(db *mongo.Client, dbName string) contracts.CarePlanJobRepository {
	return &CarePlanJobMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionCarePlanJobs),
	}
}

func (r *CarePlanJobMongoRepository) CreateJob(ctx context.Context, job *models.CarePlanJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	job.Status = models.CarePlanJobStatusPending
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.Collection.InsertOne(ctx, job)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return job.ID, nil
}

func (r *CarePlanJobMongoRepository) FindJobByID(ctx context.Context, jobID string) (*models.CarePlanJob, error) {
	var job models.CarePlanJob
	err := r.Collection.FindOne(ctx, bson.M{"_id": jobID}).Decode(&job)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &job, nil
}

// ClaimPending flips pending → processing with a status-guarded update so a
// redelivered id for a claimed or terminal job matches nothing and becomes a
// no-op.
func (r *CarePlanJobMongoRepository) ClaimPending(ctx context.Context, jobID string) (bool, error) {
	filter := bson.M{"_id": jobID, "status": models.CarePlanJobStatusPending}
	update := bson.M{"$set": bson.M{
		"status":    models.CarePlanJobStatusProcessing,
		"updatedAt": time.Now().UTC(),
	}}

	result, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, exceptions.ErrMongoDBUpdateDocument(err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *CarePlanJobMongoRepository) CompleteJob(ctx context.Context, jobID, content string) error {
	filter := bson.M{"_id": jobID, "status": models.CarePlanJobStatusProcessing}
	update := bson.M{"$set": bson.M{
		"status":           models.CarePlanJobStatusCompleted,
		"generatedContent": content,
		"updatedAt":        time.Now().UTC(),
	}}

	_, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *CarePlanJobMongoRepository) FailJob(ctx context.Context, jobID string) error {
	filter := bson.M{"_id": jobID, "status": models.CarePlanJobStatusProcessing}
	update := bson.M{"$set": bson.M{
		"status":    models.CarePlanJobStatusFailed,
		"updatedAt": time.Now().UTC(),
	}}

	_, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *CarePlanJobMongoRepository) SetRetryCount(ctx context.Context, jobID string, retryCount int) error {
	filter := bson.M{"_id": jobID}
	update := bson.M{"$set": bson.M{
		"retryCount": retryCount,
		"updatedAt":  time.Now().UTC(),
	}}

	_, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *CarePlanJobMongoRepository) ListStuck(ctx context.Context, status models.CarePlanJobStatus, age time.Duration) ([]models.CarePlanJob, error) {
	cutoff := time.Now().UTC().Add(-age)
	filter := bson.M{
		"status":    status,
		"updatedAt": bson.M{"$lt": cutoff},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var jobs []models.CarePlanJob
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return jobs, nil
}

func (r *CarePlanJobMongoRepository) ListAllJobs(ctx context.Context) ([]models.CarePlanJob, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.Collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var jobs []models.CarePlanJob
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return jobs, nil
}

func (r *CarePlanJobMongoRepository) CountByStatus(ctx context.Context) (map[models.CarePlanJobStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.CarePlanJobStatus `bson:"_id"`
		Count  int64                    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}

	counts := make(map[models.CarePlanJobStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
