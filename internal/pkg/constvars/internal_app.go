package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "requestID"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "isClientRequestID"
)

// Mongo collection names
const (
	MongoCollectionProviders    = "providers"
	MongoCollectionPatients     = "patients"
	MongoCollectionOrders       = "orders"
	MongoCollectionCarePlanJobs = "care_plan_jobs"
)

// Redis key prefixes
const (
	RedisKeySubmissionMinutePrefix = "careplan:ratelimit:minute"
	RedisKeySubmissionDayPrefix    = "careplan:ratelimit:day"
	RedisKeySweepLeaderLock        = "careplan:sweep:leader"
)

// URL params
const (
	URLParamCarePlanID = "careplan_id"
)
