package constvars

// Validation messages for users, map it with respective tag field
var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"len":      "must be %s characters long",
	"numeric":  "must be a number",
	"alphanum": "must contain only alphanumeric characters",
	"datetime": "must be a valid date in YYYY-MM-DD format",
	"npi":      "must be a valid 10-digit national provider identifier",
	"mrn":      "must be a valid 6-character medical record number",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min": true,
	"max": true,
	"len": true,
}

// Error messages for clients. These are the only texts that ever leave the
// service; they must stay generic and never carry stored record data.
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientTooManyRequests               = "submission limit reached, please try again later"
	ErrClientCarePlanNotFound              = "care plan not found"
	ErrClientCarePlanNotReady              = "care plan is not ready yet"
	ErrClientSubmissionNotScheduled        = "submission accepted but could not be scheduled, please retry"
	ErrClientRecordConflict                = "the submitted records conflict with existing data, please resubmit"
)

// Error messages for developers
const (
	ErrDevInvalidInput             = "invalid input"
	ErrDevCannotParseJSON          = "cannot parse JSON"
	ErrDevCannotParseDate          = "cannot parse date"
	ErrDevValidationFailed         = "request validation failed"
	ErrDevServerDeadlineExceeded   = "server deadline exceeded"
	ErrDevServerProcess            = "internal server process failed"
	ErrDevURLParamIDMissing        = "missing URL parameter: %s"
	ErrDevRateLimitEvaluation      = "failed to evaluate submission rate limit"
	ErrDevValidationRetryExhausted = "validation retries exhausted after uniqueness conflicts"

	// Mongo
	ErrDevDBFailedToFindDocument   = "failed to find document on database"
	ErrDevDBFailedToInsertDocument = "failed to insert document to database"
	ErrDevDBFailedToUpdateDocument = "failed to update document on database"
	ErrDevDBFailedToIterateDocs    = "failed to iterate documents on database"
	ErrDevDBDuplicateKey           = "uniqueness constraint violated on insert"
	ErrDevDBStringNotObjectID      = "string cannot be converted to ObjectID"

	// Redis
	ErrDevRedisGetData        = "failed to get data from redis"
	ErrDevRedisSetData        = "failed to set data to redis"
	ErrDevRedisDeleteData     = "failed to delete data from redis"
	ErrDevRedisIncrementValue = "failed to increment value on redis"
	ErrDevRedisSetNX          = "failed to set data with NX on redis"

	// RabbitMQ
	ErrDevRabbitMQPublishMessage = "failed to publish message to queue: %s"
	ErrDevRabbitMQConsume        = "failed to start consuming from queue: %s"
	ErrDevRabbitMQInspectQueue   = "failed to inspect queue: %s"

	// Minio
	ErrDevMinioFailedToCreateObject = "failed to create object in bucket: %s"

	// Generation
	ErrDevGenerationCallFailed = "generation call failed"

	// JSON
	ErrDevCannotMarshalJSON = "cannot marshal JSON"
)
