package config

import (
	"careplan-service/internal/pkg/utils"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "careplan"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		RabbitMQ: RabbitMQ{
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "defaultPassword"),
		},
		Minio: Minio{
			Host:       utils.GetEnvString("MINIO_HOST", "localhost"),
			Port:       utils.GetEnvString("MINIO_PORT", "9000"),
			Username:   utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password:   utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			BucketName: utils.GetEnvString("MINIO_BUCKET_NAME", "care-plan-artifacts"),
			UseSSL:     utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                      utils.GetEnvString("APP_ENV", "development"),
			Port:                     utils.GetEnvString("APP_PORT", ":8080"),
			Timezone:                 utils.GetEnvString("APP_TIMEZONE", "UTC"),
			EndpointPrefix:           utils.GetEnvString("APP_ENDPOINT_PREFIX", "v1"),
			MaxRequestsPerSecond:     utils.GetEnvInt("APP_MAX_REQUESTS_PER_SECOND", 50),
			ShutdownTimeoutInSeconds: utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
		},
		CarePlan: AppCarePlan{
			SubmissionsPerMinute:    utils.GetEnvInt("CAREPLAN_SUBMISSIONS_PER_MINUTE", 10),
			SubmissionsPerDay:       utils.GetEnvInt("CAREPLAN_SUBMISSIONS_PER_DAY", 200),
			ValidationRetryAttempts: utils.GetEnvInt("CAREPLAN_VALIDATION_RETRY_ATTEMPTS", 2),
		},
		Generation: AppGeneration{
			BaseURL:                 utils.GetEnvString("GENERATION_BASE_URL", "https://api.openai.com/v1"),
			APIKey:                  utils.GetEnvString("GENERATION_API_KEY", ""),
			Model:                   utils.GetEnvString("GENERATION_MODEL", "gpt-4o-mini"),
			UseMock:                 utils.GetEnvBool("GENERATION_USE_MOCK", false),
			RequestTimeoutInSeconds: utils.GetEnvInt("GENERATION_REQUEST_TIMEOUT_IN_SECONDS", 30),
			RateLimitRPM:            utils.GetEnvInt("GENERATION_RATE_LIMIT_RPM", 60),
			MaxTokens:               utils.GetEnvInt("GENERATION_MAX_TOKENS", 2000),
		},
		Worker: AppWorker{
			PoolSize:                 utils.GetEnvInt("WORKER_POOL_SIZE", 4),
			Prefetch:                 utils.GetEnvInt("WORKER_PREFETCH", 4),
			MaxRetries:               utils.GetEnvInt("WORKER_MAX_RETRIES", 3),
			RetryBaseDelayInMillis:   utils.GetEnvInt("WORKER_RETRY_BASE_DELAY_IN_MILLIS", 1000),
			RetryMaxDelayInMillis:    utils.GetEnvInt("WORKER_RETRY_MAX_DELAY_IN_MILLIS", 600000),
			SweepIntervalInSeconds:   utils.GetEnvInt("WORKER_SWEEP_INTERVAL_IN_SECONDS", 300),
			PendingRequeueAgeInSecs:  utils.GetEnvInt("WORKER_PENDING_REQUEUE_AGE_IN_SECONDS", 600),
			ProcessingStaleAgeInSecs: utils.GetEnvInt("WORKER_PROCESSING_STALE_AGE_IN_SECONDS", 1800),
			GenerationTimeoutInSecs:  utils.GetEnvInt("WORKER_GENERATION_TIMEOUT_IN_SECONDS", 120),
		},
	}
}
