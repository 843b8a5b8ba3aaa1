package constvars

// Structured logging field keys
const (
	LoggingRequestIDKey          = "request_id"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingUserAgentKey          = "user_agent"
	LoggingQueryKey              = "query"
	LoggingStatusCodeKey         = "status_code"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingJobIDKey              = "job_id"
	LoggingJobStatusKey          = "job_status"
	LoggingAttemptKey            = "attempt"
	LoggingRetryCountKey         = "retry_count"
	LoggingQueueNameKey          = "queue_name"
	LoggingFindingCountKey       = "finding_count"
	LoggingConfirmKey            = "confirm"
	LoggingOutcomeKey            = "outcome"
	LoggingObjectNameKey         = "object_name"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
)
